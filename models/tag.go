package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	users []*User
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Users returns the users currently linked to t in memory.
func (t *Tag) Users() []*User {
	return slices.Clone(t.users)
}

func (t *Tag) addUser(u *User) {
	if slices.Contains(t.users, u) {
		return
	}
	t.users = append(t.users, u)
}

func (t *Tag) removeUser(u *User) {
	t.users = slices.DeleteFunc(t.users, func(existing *User) bool { return existing == u })
}

func sameTag(a, b *Tag) bool {
	return a == b || (a.ID != uuid.Nil && a.ID == b.ID)
}
