package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Veterinarian struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`
	FullName           string    `gorm:"size:200;not null" json:"full_name"`
	LicenseNumber      string    `gorm:"size:50;not null;unique" json:"license_number"`
	Bio                *string   `gorm:"type:text" json:"bio"`
	IsAvailableForChat bool      `gorm:"not null" json:"is_available_for_chat"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Veterinarian) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
