package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService appends to and reads from a conversation's message log.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

type SendMessageInput struct {
	Content     string
	MessageType string
	Attachments []string
}

// Send appends a message and bumps the conversation summary. The status check,
// last_message_at bump and recipient unread flag are one conditional UPDATE
// guarded on status = ACTIVE, so a concurrent close cannot slip a message into
// a closed thread and concurrent sends cannot lose each other's flag.
func (s *MessageService) Send(callerID, conversationID uuid.UUID, in SendMessageInput) (*MessageView, error) {
	conv, err := loadConversation(s.db, conversationID)
	if err != nil {
		return nil, err
	}
	isUser, err := participantSide(conv, callerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now()
	updates := map[string]interface{}{"last_message_at": now}
	if isUser {
		updates["vet_unread"] = true
	} else {
		updates["user_unread"] = true
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       callerID,
		Content:        in.Content,
		MessageType:    in.MessageType,
		Attachments:    in.Attachments,
		SentAt:         now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Conversation{}).
			Where("id = ? AND status = ?", conversationID, models.ConversationActive).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Zero rows can also mean the row vanished since loadConversation;
			// keep NotFound and Conflict distinguishable.
			var check models.Conversation
			if err := tx.First(&check, "id = ?", conversationID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrConversationNotFound
				}
				return fmt.Errorf("recheck conversation: %w", err)
			}
			return ErrConversationClosed
		}

		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("save message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := toMessageView(&msg, senderName(conv, callerID))
	return &view, nil
}

// List returns a conversation's messages oldest first; the id column breaks
// sent_at ties so page windows never overlap or skip.
func (s *MessageService) List(callerID, conversationID uuid.UUID, page, pageSize int) ([]MessageView, error) {
	conv, err := loadConversation(s.db, conversationID)
	if err != nil {
		return nil, err
	}
	if _, err := participantSide(conv, callerID); err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)

	var msgs []models.Message
	err = s.db.
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	views := make([]MessageView, len(msgs))
	for i := range msgs {
		views[i] = toMessageView(&msgs[i], senderName(conv, msgs[i].SenderID))
	}
	return views, nil
}

// Delete hard-deletes a message; only its sender may do so. Conversation
// summary fields are deliberately left untouched.
func (s *MessageService) Delete(callerID, messageID uuid.UUID) error {
	var msg models.Message
	err := s.db.First(&msg, "id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("load message: %w", err)
	}

	if msg.SenderID != callerID {
		return ErrNotSender
	}

	if err := s.db.Delete(&msg).Error; err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
