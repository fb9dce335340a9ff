package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConversationActive = "ACTIVE"
	ConversationClosed = "CLOSED"
)

type Conversation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	VeterinarianID uuid.UUID  `gorm:"type:uuid;not null;index" json:"veterinarian_id"`
	Subject        string     `gorm:"size:300" json:"subject"`
	Status         string     `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	LastMessageAt  time.Time  `gorm:"not null" json:"last_message_at"`
	UserUnread     bool       `gorm:"not null;default:false" json:"user_unread"`
	VetUnread      bool       `gorm:"not null;default:false" json:"vet_unread"`
	ClosedAt       *time.Time `json:"closed_at"`

	User         User         `gorm:"foreignkey:UserID" json:"-"`
	Veterinarian Veterinarian `gorm:"foreignkey:VeterinarianID" json:"-"`
	Messages     []Message    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ConversationActive
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	return nil
}
