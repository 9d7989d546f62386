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

type OrderRepository interface {
	Place(ctx context.Context, order *models.Order, authorize func(*models.Order) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindPageByUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (pagination.Page[*models.Order], error)
}

type GormOrderRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormOrderRepository(db *gorm.DB, log *zap.Logger) *GormOrderRepository {
	return &GormOrderRepository{db: db, log: log}
}

// Place writes the order and its lines and empties the source cart in one
// transaction. authorize runs after the cart is emptied; an error from it
// rolls everything back and leaves the cart as it was.
func (r *GormOrderRepository) Place(ctx context.Context, order *models.Order, authorize func(*models.Order) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		res := tx.Where("cart_id = ?", order.CartID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(order.Items)) {
			return apperrors.Conflict("Cart changed during checkout")
		}

		if authorize != nil {
			if err := authorize(order); err != nil {
				return err
			}
		}

		err := tx.Model(order).Updates(map[string]any{
			"status":            order.Status,
			"payment_gateway":   order.PaymentGateway,
			"payment_reference": order.PaymentReference,
		}).Error
		if err != nil {
			return err
		}

		r.log.Info("Order placed",
			zap.String("order_id", order.ID.String()),
			zap.String("cart_id", order.CartID.String()),
			zap.String("total", order.Total.StringFixed(models.MoneyPlaces)),
		)
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "Order")
	}
	return &order, nil
}

func (r *GormOrderRepository) FindPageByUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (pagination.Page[*models.Order], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return pagination.Page[*models.Order]{}, err
	}

	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Scopes(page.Scope()).
		Find(&orders).Error
	if err != nil {
		return pagination.Page[*models.Order]{}, err
	}
	return pagination.NewPage(orders, page, total), nil
}
