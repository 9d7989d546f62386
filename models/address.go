package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Street    string    `gorm:"not null" json:"street"`
	City      string    `gorm:"not null" json:"city"`
	Zip       string    `gorm:"size:10;not null" json:"zip"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	user *User
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// User is the back-reference maintained by User.AddAddress/RemoveAddress.
func (a *Address) User() *User {
	return a.user
}
