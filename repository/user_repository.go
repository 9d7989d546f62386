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

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindPage(ctx context.Context, page pagination.Request) (pagination.Page[*models.User], error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormUserRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormUserRepository(db *gorm.DB, log *zap.Logger) *GormUserRepository {
	return &GormUserRepository{db: db, log: log}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		return r.saveGraph(tx, user)
	})
}

// FindByID loads the whole user aggregate and re-links its back-references.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Profile").
		Preload("Tags").
		Preload("FavoriteProducts").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "User")
	}
	user.Link()
	return &user, nil
}

// FindByEmail matches case-insensitively. Only the user row is loaded.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "User")
	}
	return &user, nil
}

func (r *GormUserRepository) FindPage(ctx context.Context, page pagination.Request) (pagination.Page[*models.User], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return pagination.Page[*models.User]{}, err
	}

	var users []*models.User
	if err := r.db.WithContext(ctx).Scopes(page.Scope()).Find(&users).Error; err != nil {
		return pagination.Page[*models.User]{}, err
	}
	return pagination.NewPage(users, page, total), nil
}

// Save writes the user and reconciles every owned collection with the
// in-memory graph. Addresses and a profile no longer attached are deleted;
// tag and wishlist links no longer present are unlinked.
func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return err
		}
		return r.saveGraph(tx, user)
	})
}

func (r *GormUserRepository) saveGraph(tx *gorm.DB, user *models.User) error {
	if err := r.saveAddresses(tx, user); err != nil {
		return err
	}
	if err := r.saveProfile(tx, user); err != nil {
		return err
	}
	if err := r.saveTags(tx, user); err != nil {
		return err
	}
	return r.saveFavorites(tx, user)
}

func (r *GormUserRepository) saveAddresses(tx *gorm.DB, user *models.User) error {
	keep := make([]uuid.UUID, 0, len(user.Addresses))
	for _, a := range user.Addresses {
		ensureID(&a.ID)
		a.UserID = user.ID
		keep = append(keep, a.ID)
	}

	removed, err := deleteOrphans(tx, &models.Address{}, "user_id", user.ID, keep)
	if err != nil {
		return err
	}
	if removed > 0 {
		r.log.Debug("Removed orphaned addresses", zap.String("user_id", user.ID.String()), zap.Int64("count", removed))
	}

	for _, a := range user.Addresses {
		if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormUserRepository) saveProfile(tx *gorm.DB, user *models.User) error {
	var keep []uuid.UUID
	if user.Profile != nil {
		ensureID(&user.Profile.ID)
		user.Profile.UserID = user.ID
		keep = append(keep, user.Profile.ID)
	}

	if _, err := deleteOrphans(tx, &models.Profile{}, "user_id", user.ID, keep); err != nil {
		return err
	}
	if user.Profile == nil {
		return nil
	}
	return tx.Omit(clause.Associations).Save(user.Profile).Error
}

func (r *GormUserRepository) saveTags(tx *gorm.DB, user *models.User) error {
	keep := make([]uuid.UUID, 0, len(user.Tags))
	links := make([]models.UserTag, 0, len(user.Tags))
	for _, t := range user.Tags {
		if t.ID == uuid.Nil {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}
		keep = append(keep, t.ID)
		links = append(links, models.UserTag{UserID: user.ID, TagID: t.ID})
	}

	unlink := tx.Where("user_id = ?", user.ID)
	if len(keep) > 0 {
		unlink = unlink.Where("tag_id NOT IN ?", keep)
	}
	if err := unlink.Delete(&models.UserTag{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (r *GormUserRepository) saveFavorites(tx *gorm.DB, user *models.User) error {
	keep := make([]uuid.UUID, 0, len(user.FavoriteProducts))
	rows := make([]models.Wishlist, 0, len(user.FavoriteProducts))
	for _, p := range user.FavoriteProducts {
		keep = append(keep, p.ID)
		rows = append(rows, models.Wishlist{UserID: user.ID, ProductID: p.ID})
	}

	unlink := tx.Where("user_id = ?", user.ID)
	if len(keep) > 0 {
		unlink = unlink.Where("product_id NOT IN ?", keep)
	}
	if err := unlink.Delete(&models.Wishlist{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// Delete removes the user with its addresses, profile and join rows.
// Tags and products are shared and stay.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.UserTag{}, &models.Wishlist{}, &models.Address{}, &models.Profile{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("User")
		}
		return nil
	})
}
