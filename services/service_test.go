package services

import (
	"testing"

	"github.com/cesar/kaiju/database"
	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every goroutine on the same in-memory database
	// and serializes writes the way the production store does.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		FullName: name,
		Email:    uuid.NewString() + "@example.com",
		Password: "not-a-real-hash",
		Role:     "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedVet creates a veterinarian profile together with its owning account.
func seedVet(t *testing.T, db *gorm.DB, name string, available bool) (models.Veterinarian, models.User) {
	t.Helper()

	account := seedUser(t, db, name)
	vet := models.Veterinarian{
		UserID:             account.ID,
		FullName:           name,
		LicenseNumber:      "CRMV-" + uuid.NewString()[:8],
		IsAvailableForChat: available,
	}
	require.NoError(t, db.Create(&vet).Error)
	return vet, account
}

func messageCount(t *testing.T, db *gorm.DB, conversationID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error)
	return count
}

func reloadConversation(t *testing.T, db *gorm.DB, id uuid.UUID) models.Conversation {
	t.Helper()

	var conv models.Conversation
	require.NoError(t, db.First(&conv, "id = ?", id).Error)
	return conv
}
