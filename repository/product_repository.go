package repository

import (
	"context"
	"strings"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Page       pagination.Request
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindPage(ctx context.Context, filter ProductFilter) (pagination.Page[*models.Product], error)
	Search(ctx context.Context, query string, limit int) ([]*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormProductRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormProductRepository(db *gorm.DB, log *zap.Logger) *GormProductRepository {
	return &GormProductRepository{db: db, log: log}
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Product")
	}
	return &product, nil
}

func (r *GormProductRepository) FindPage(ctx context.Context, filter ProductFilter) (pagination.Page[*models.Product], error) {
	byCategory := func(db *gorm.DB) *gorm.DB {
		if filter.CategoryID != nil {
			return db.Where("category_id = ?", *filter.CategoryID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(byCategory).Count(&total).Error; err != nil {
		return pagination.Page[*models.Product]{}, err
	}

	var products []*models.Product
	if err := r.db.WithContext(ctx).Scopes(byCategory, filter.Page.Scope()).Preload("Category").Find(&products).Error; err != nil {
		return pagination.Page[*models.Product]{}, err
	}
	return pagination.NewPage(products, filter.Page, total), nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches product names first. When no name matches it falls back
// to products whose category name matches.
func (r *GormProductRepository) Search(ctx context.Context, query string, limit int) ([]*models.Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var products []*models.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name ASC").Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}

	var categoryIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Pluck("id", &categoryIDs).Error; err != nil {
		return nil, err
	}
	if len(categoryIDs) == 0 {
		return products, nil
	}

	if err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id IN ?", categoryIDs).
		Order("name ASC").Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// Delete removes the product together with the cart lines and wishlist
// entries that point at it.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return err
		}
		lines := tx.Where("product_id = ?", id).Delete(&models.CartItem{})
		if lines.Error != nil {
			return lines.Error
		}
		if lines.RowsAffected > 0 {
			r.log.Info("Removed product from carts", zap.String("product_id", id.String()), zap.Int64("lines", lines.RowsAffected))
		}

		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Product")
		}
		return nil
	})
}
