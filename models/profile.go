package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Bio           string     `json:"bio"`
	PhoneNumber   string     `json:"phone_number"`
	DateOfBirth   *time.Time `gorm:"type:date" json:"date_of_birth"`
	LoyaltyPoints int        `gorm:"not null;default:0" json:"loyalty_points"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	user *User
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Profile) User() *User {
	return p.user
}
