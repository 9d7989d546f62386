package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"` // Optional foreign key to Category
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AssignCategory moves the product into category, keeping both sides in step.
// A nil category is the same as UnassignCategory.
func (p *Product) AssignCategory(category *Category) {
	if category == nil {
		p.UnassignCategory()
		return
	}
	if p.Category != nil && p.Category != category {
		p.Category.removeProduct(p)
	}
	id := category.ID
	p.Category = category
	p.CategoryID = &id
	category.addProduct(p)
}

func (p *Product) UnassignCategory() {
	if p.Category != nil {
		p.Category.removeProduct(p)
	}
	p.Category = nil
	p.CategoryID = nil
}

func sameProduct(a, b *Product) bool {
	return a == b || (a.ID != uuid.Nil && a.ID == b.ID)
}
