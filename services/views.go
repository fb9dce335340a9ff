package services

import (
	"time"

	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
)

// ConversationView is the response shape for a conversation, with the unread
// flag already resolved to the caller's side.
type ConversationView struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	UserName         string     `json:"user_name"`
	VeterinarianID   uuid.UUID  `json:"veterinarian_id"`
	VeterinarianName string     `json:"veterinarian_name"`
	Subject          string     `json:"subject"`
	Status           string     `json:"status"`
	LastMessageAt    time.Time  `json:"last_message_at"`
	HasUnread        bool       `json:"has_unread"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at"`
}

type MessageView struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	SenderName     string     `json:"sender_name"`
	Content        string     `json:"content"`
	MessageType    string     `json:"message_type"`
	Attachments    []string   `json:"attachments"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	IsEdited       bool       `json:"is_edited"`
	EditedAt       *time.Time `json:"edited_at"`
	SentAt         time.Time  `json:"sent_at"`
}

// toConversationView expects conv.User and conv.Veterinarian to be loaded.
func toConversationView(conv *models.Conversation, callerID uuid.UUID) ConversationView {
	hasUnread := conv.UserUnread
	if callerID != conv.UserID {
		hasUnread = conv.VetUnread
	}

	return ConversationView{
		ID:               conv.ID,
		UserID:           conv.UserID,
		UserName:         conv.User.FullName,
		VeterinarianID:   conv.VeterinarianID,
		VeterinarianName: conv.Veterinarian.FullName,
		Subject:          conv.Subject,
		Status:           conv.Status,
		LastMessageAt:    conv.LastMessageAt,
		HasUnread:        hasUnread,
		CreatedAt:        conv.CreatedAt,
		ClosedAt:         conv.ClosedAt,
	}
}

func toMessageView(msg *models.Message, senderName string) MessageView {
	return MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     senderName,
		Content:        msg.Content,
		MessageType:    msg.MessageType,
		Attachments:    msg.Attachments,
		IsRead:         msg.IsRead,
		ReadAt:         msg.ReadAt,
		IsEdited:       msg.IsEdited,
		EditedAt:       msg.EditedAt,
		SentAt:         msg.SentAt,
	}
}

// senderName resolves a participant's display name from the conversation's
// loaded sides. The veterinarian side signs with the practice profile name.
func senderName(conv *models.Conversation, senderID uuid.UUID) string {
	if senderID == conv.UserID {
		return conv.User.FullName
	}
	return conv.Veterinarian.FullName
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
