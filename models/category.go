package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the inverse side of Product.Category. Deleting a category
// leaves its products in place with no category.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Products  []*Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"products,omitempty"` // One-to-many relationship
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Link points every loaded product back at c.
func (c *Category) Link() {
	for _, p := range c.Products {
		p.Category = c
	}
}

func (c *Category) addProduct(p *Product) {
	for _, existing := range c.Products {
		if sameProduct(existing, p) {
			return
		}
	}
	c.Products = append(c.Products, p)
}

func (c *Category) removeProduct(p *Product) {
	c.Products = slices.DeleteFunc(c.Products, func(existing *Product) bool {
		return sameProduct(existing, p)
	})
}
