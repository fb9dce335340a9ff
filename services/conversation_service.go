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

// ConversationService owns the conversation lifecycle: starting or reusing a
// thread with a veterinarian, listing, read-marking and closing.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

type StartConversationInput struct {
	VeterinarianID uuid.UUID
	Subject        string
	InitialMessage string
}

// Start opens a conversation between the caller and a veterinarian, or returns
// the pair's existing ACTIVE conversation unchanged. A partial unique index on
// (user_id, veterinarian_id) WHERE status = 'ACTIVE' is the real guard against
// concurrent starts; the lookup below is only a fast path.
func (s *ConversationService) Start(callerID uuid.UUID, in StartConversationInput) (*ConversationView, error) {
	var caller models.User
	if err := s.db.First(&caller, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load caller: %w", err)
	}

	var vet models.Veterinarian
	if err := s.db.First(&vet, "id = ?", in.VeterinarianID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVeterinarianNotFound
		}
		return nil, fmt.Errorf("load veterinarian: %w", err)
	}
	if !vet.IsAvailableForChat {
		return nil, ErrVeterinarianUnavailable
	}

	if existing, err := s.findActive(callerID, vet.ID); err == nil {
		view := toConversationView(existing, callerID)
		return &view, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find active conversation: %w", err)
	}

	initial := strings.TrimSpace(in.InitialMessage)
	conv := models.Conversation{
		UserID:         callerID,
		VeterinarianID: vet.ID,
		Subject:        in.Subject,
		Status:         models.ConversationActive,
		LastMessageAt:  time.Now(),
		// The caller has implicitly read their own opening message.
		VetUnread: initial != "",
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		if initial != "" {
			msg := models.Message{
				ConversationID: conv.ID,
				SenderID:       callerID,
				Content:        initial,
			}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: another request created the ACTIVE thread first.
			existing, ferr := s.findActive(callerID, vet.ID)
			if ferr != nil {
				return nil, fmt.Errorf("load winning conversation: %w", ferr)
			}
			view := toConversationView(existing, callerID)
			return &view, nil
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	conv.User = caller
	conv.Veterinarian = vet
	view := toConversationView(&conv, callerID)
	return &view, nil
}

// List returns the caller's conversations from either side, most recent
// activity first.
func (s *ConversationService) List(callerID uuid.UUID, page, pageSize int) ([]ConversationView, error) {
	page, pageSize = normalizePage(page, pageSize)

	var convs []models.Conversation
	err := s.db.
		Preload("User").
		Preload("Veterinarian").
		Joins("JOIN veterinarians ON veterinarians.id = conversations.veterinarian_id").
		Where("conversations.user_id = ? OR veterinarians.user_id = ?", callerID, callerID).
		Order("conversations.last_message_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	views := make([]ConversationView, len(convs))
	for i := range convs {
		views[i] = toConversationView(&convs[i], callerID)
	}
	return views, nil
}

func (s *ConversationService) Get(callerID, conversationID uuid.UUID) (*ConversationView, error) {
	conv, err := loadConversation(s.db, conversationID)
	if err != nil {
		return nil, err
	}
	if _, err := participantSide(conv, callerID); err != nil {
		return nil, err
	}

	view := toConversationView(conv, callerID)
	return &view, nil
}

// MarkAsRead marks every message from the other side as read and clears the
// caller's unread flag. Re-invoking on an already-read conversation is a no-op.
func (s *ConversationService) MarkAsRead(callerID, conversationID uuid.UUID) error {
	conv, err := loadConversation(s.db, conversationID)
	if err != nil {
		return err
	}
	isUser, err := participantSide(conv, callerID)
	if err != nil {
		return err
	}

	flag := "vet_unread"
	if isUser {
		flag = "user_unread"
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, callerID, false).
			Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
		if err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}

		err = tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update(flag, false).Error
		if err != nil {
			return fmt.Errorf("clear unread flag: %w", err)
		}
		return nil
	})
}

// Close transitions ACTIVE -> CLOSED. CLOSED is terminal; closing an already
// closed conversation is accepted as a no-op and keeps the original closed_at.
func (s *ConversationService) Close(callerID, conversationID uuid.UUID) error {
	conv, err := loadConversation(s.db, conversationID)
	if err != nil {
		return err
	}
	if _, err := participantSide(conv, callerID); err != nil {
		return err
	}

	now := time.Now()
	res := s.db.Model(&models.Conversation{}).
		Where("id = ? AND status = ?", conversationID, models.ConversationActive).
		Updates(map[string]interface{}{"status": models.ConversationClosed, "closed_at": now})
	if res.Error != nil {
		return fmt.Errorf("close conversation: %w", res.Error)
	}
	return nil
}

// UnreadCount counts the caller's conversations whose own-side unread flag is
// set, across both participant roles.
func (s *ConversationService) UnreadCount(callerID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Conversation{}).
		Joins("JOIN veterinarians ON veterinarians.id = conversations.veterinarian_id").
		Where(
			"(conversations.user_id = ? AND conversations.user_unread = ?) OR (veterinarians.user_id = ? AND conversations.vet_unread = ?)",
			callerID, true, callerID, true,
		).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread conversations: %w", err)
	}
	return count, nil
}

func (s *ConversationService) findActive(userID, vetID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.
		Preload("User").
		Preload("Veterinarian").
		Where("user_id = ? AND veterinarian_id = ? AND status = ?", userID, vetID, models.ConversationActive).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func loadConversation(db *gorm.DB, conversationID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := db.
		Preload("User").
		Preload("Veterinarian").
		First(&conv, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return &conv, nil
}

// participantSide reports whether the caller is the user side of the
// conversation, or fails with ErrNotParticipant for everyone else.
func participantSide(conv *models.Conversation, callerID uuid.UUID) (bool, error) {
	switch callerID {
	case conv.UserID:
		return true, nil
	case conv.Veterinarian.UserID:
		return false, nil
	}
	return false, ErrNotParticipant
}
