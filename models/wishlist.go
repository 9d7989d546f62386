package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is the join row behind User.FavoriteProducts.
type Wishlist struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserTag is the join row behind User.Tags.
type UserTag struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (UserTag) TableName() string { return "user_tags" }
