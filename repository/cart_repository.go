package repository

import (
	"context"

	"storefront/apperrors"
	"storefront/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormCartRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormCartRepository(db *gorm.DB, log *zap.Logger) *GormCartRepository {
	return &GormCartRepository{db: db, log: log}
}

func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(cart).Error; err != nil {
			return err
		}
		return r.saveItems(tx, cart)
	})
}

// FindByID loads the cart with its items and their products, and restores
// the item back-references.
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "Cart")
	}
	cart.Link()
	return &cart, nil
}

// Save writes the cart and its current items. Items no longer in the cart
// are deleted as orphans.
func (r *GormCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			return err
		}
		return r.saveItems(tx, cart)
	})
}

func (r *GormCartRepository) saveItems(tx *gorm.DB, cart *models.Cart) error {
	keep := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ensureID(&item.ID)
		item.CartID = cart.ID
		if item.Product != nil {
			item.ProductID = item.Product.ID
		}
		keep = append(keep, item.ID)
	}

	removed, err := deleteOrphans(tx, &models.CartItem{}, "cart_id", cart.ID, keep)
	if err != nil {
		return err
	}
	if removed > 0 {
		r.log.Debug("Removed orphaned cart items", zap.String("cart_id", cart.ID.String()), zap.Int64("count", removed))
	}

	for _, item := range cart.Items {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Cart{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Cart")
		}
		return nil
	})
}
