package repository

import (
	"context"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID, withProducts bool) (*models.Category, error)
	FindPage(ctx context.Context, page pagination.Request) (pagination.Page[*models.Category], error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormCategoryRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormCategoryRepository(db *gorm.DB, log *zap.Logger) *GormCategoryRepository {
	return &GormCategoryRepository{db: db, log: log}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID, withProducts bool) (*models.Category, error) {
	q := r.db.WithContext(ctx)
	if withProducts {
		q = q.Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
	}

	var category models.Category
	if err := q.First(&category, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Category")
	}
	category.Link()
	return &category, nil
}

func (r *GormCategoryRepository) FindPage(ctx context.Context, page pagination.Request) (pagination.Page[*models.Category], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return pagination.Page[*models.Category]{}, err
	}

	var categories []*models.Category
	if err := r.db.WithContext(ctx).Scopes(page.Scope()).Find(&categories).Error; err != nil {
		return pagination.Page[*models.Category]{}, err
	}
	return pagination.NewPage(categories, page, total), nil
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(category).Error
}

// Delete removes the category. Its products stay, with no category.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		detached := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil)
		if detached.Error != nil {
			return detached.Error
		}

		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Category")
		}
		r.log.Info("Category deleted", zap.String("category_id", id.String()), zap.Int64("detached_products", detached.RowsAffected))
		return nil
	})
}
