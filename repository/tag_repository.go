package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/apperrors"
	"storefront/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TagRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (*models.Tag, error)
	FindAll(ctx context.Context) ([]*models.Tag, error)
}

type GormTagRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormTagRepository(db *gorm.DB, log *zap.Logger) *GormTagRepository {
	return &GormTagRepository{db: db, log: log}
}

// FindOrCreateByName returns the first tag called name, creating it if none exists.
func (r *GormTagRepository) FindOrCreateByName(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Field("names", "Tag names must not be blank")
	}

	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at ASC").First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	r.log.Debug("Tag created", zap.String("name", name))
	return &tag, nil
}

func (r *GormTagRepository) FindAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
