package services

import (
	"errors"
	"fmt"

	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService is the user-lookup contract the chat core exposes to the rest of
// the platform, plus the cascade hook the account-deletion flow calls.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserInfo struct {
	ID          uuid.UUID
	Exists      bool
	DisplayName string
}

func (s *UserService) Lookup(userID uuid.UUID) (UserInfo, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserInfo{ID: userID}, nil
	}
	if err != nil {
		return UserInfo{}, fmt.Errorf("load user: %w", err)
	}

	return UserInfo{ID: user.ID, Exists: true, DisplayName: user.FullName}, nil
}

// PurgeChatData removes every chat trace of a deleted account: messages the
// user sent anywhere, plus the conversations (and their remaining messages)
// where the user is the pet-owner side. Veterinarian-side threads are the
// veterinarian lifecycle's responsibility.
func (s *UserService) PurgeChatData(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sender_id = ?", userID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete sent messages: %w", err)
		}

		owned := tx.Model(&models.Conversation{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("conversation_id IN (?)", owned).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete conversation messages: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Conversation{}).Error; err != nil {
			return fmt.Errorf("delete conversations: %w", err)
		}
		return nil
	})
}
