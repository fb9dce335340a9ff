package services

import (
	"errors"
	"fmt"

	"github.com/cesar/kaiju/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VeterinarianService is the veterinarian-lookup contract the chat core
// depends on when gating new conversations.
type VeterinarianService struct {
	db *gorm.DB
}

func NewVeterinarianService(db *gorm.DB) *VeterinarianService {
	return &VeterinarianService{db: db}
}

type VeterinarianInfo struct {
	ID               uuid.UUID
	Exists           bool
	AvailableForChat bool
	DisplayName      string
	OwnerUserID      uuid.UUID
}

func (s *VeterinarianService) Lookup(veterinarianID uuid.UUID) (VeterinarianInfo, error) {
	var vet models.Veterinarian
	err := s.db.First(&vet, "id = ?", veterinarianID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return VeterinarianInfo{ID: veterinarianID}, nil
	}
	if err != nil {
		return VeterinarianInfo{}, fmt.Errorf("load veterinarian: %w", err)
	}

	return VeterinarianInfo{
		ID:               vet.ID,
		Exists:           true,
		AvailableForChat: vet.IsAvailableForChat,
		DisplayName:      vet.FullName,
		OwnerUserID:      vet.UserID,
	}, nil
}
