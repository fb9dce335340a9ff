package services

import (
	"testing"

	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLookup(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := seedUser(t, db, "Ana Souza")

	info, err := svc.Lookup(user.ID)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, "Ana Souza", info.DisplayName)

	info, err = svc.Lookup(uuid.New())
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestVeterinarianLookup(t *testing.T) {
	db := newTestDB(t)
	svc := NewVeterinarianService(db)
	vet, account := seedVet(t, db, "Dr. Helena Prado", true)

	info, err := svc.Lookup(vet.ID)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.True(t, info.AvailableForChat)
	assert.Equal(t, "Dr. Helena Prado", info.DisplayName)
	assert.Equal(t, account.ID, info.OwnerUserID)

	info, err = svc.Lookup(uuid.New())
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestPurgeChatDataCascades(t *testing.T) {
	db := newTestDB(t)
	convSvc := NewConversationService(db)
	msgSvc := NewMessageService(db)
	userSvc := NewUserService(db)

	owner := seedUser(t, db, "Ana Souza")
	vet, vetAccount := seedVet(t, db, "Dr. Helena Prado", true)

	// Thread where the purged user is the pet-owner side.
	owned, err := convSvc.Start(owner.ID, StartConversationInput{
		VeterinarianID: vet.ID,
		InitialMessage: "Hello",
	})
	require.NoError(t, err)
	_, err = msgSvc.Send(vetAccount.ID, owned.ID, SendMessageInput{Content: "Hi"})
	require.NoError(t, err)

	// Thread where the purged user only appears as a sender (vet side).
	other := seedUser(t, db, "Carlos Lima")
	vetSide, err := convSvc.Start(other.ID, StartConversationInput{VeterinarianID: vet.ID})
	require.NoError(t, err)
	_, err = msgSvc.Send(vetAccount.ID, vetSide.ID, SendMessageInput{Content: "Welcome"})
	require.NoError(t, err)

	require.NoError(t, userSvc.PurgeChatData(owner.ID))

	// The owned conversation and every message in it are gone.
	var convCount int64
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", owned.ID).Count(&convCount).Error)
	assert.Equal(t, int64(0), convCount)
	assert.Equal(t, int64(0), messageCount(t, db, owned.ID))

	// Unrelated threads survive.
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", vetSide.ID).Count(&convCount).Error)
	assert.Equal(t, int64(1), convCount)
	assert.Equal(t, int64(1), messageCount(t, db, vetSide.ID))
}

func TestPurgeChatDataRemovesSentMessagesInForeignThreads(t *testing.T) {
	db := newTestDB(t)
	convSvc := NewConversationService(db)
	msgSvc := NewMessageService(db)
	userSvc := NewUserService(db)

	owner := seedUser(t, db, "Ana Souza")
	vet, vetAccount := seedVet(t, db, "Dr. Helena Prado", true)

	view, err := convSvc.Start(owner.ID, StartConversationInput{VeterinarianID: vet.ID})
	require.NoError(t, err)
	_, err = msgSvc.Send(owner.ID, view.ID, SendMessageInput{Content: "Hello"})
	require.NoError(t, err)
	_, err = msgSvc.Send(vetAccount.ID, view.ID, SendMessageInput{Content: "Hi"})
	require.NoError(t, err)

	// Purging the vet's account removes only the messages it sent; the
	// owner-side conversation itself is the user cascade's concern.
	require.NoError(t, userSvc.PurgeChatData(vetAccount.ID))

	var msgs []models.Message
	require.NoError(t, db.Where("conversation_id = ?", view.ID).Find(&msgs).Error)
	require.Len(t, msgs, 1)
	assert.Equal(t, owner.ID, msgs[0].SenderID)
}
