package models

import (
	"time"

	"storefront/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderPending = "pending"
	OrderPaid    = "paid"
)

// Order is a snapshot of a cart taken at checkout. Its lines copy the product
// name and price so later catalogue changes do not rewrite history.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CartID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"cart_id"`
	UserID           *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Status           string          `gorm:"not null;default:pending" json:"status"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentGateway   string          `json:"payment_gateway"`
	PaymentReference string          `json:"payment_reference"`
	Items            []*OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem has no foreign key to products: deleting a product keeps the line.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Position    int             `gorm:"not null" json:"position"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewOrder snapshots cart into a pending order. Every item needs its product
// loaded; an empty cart cannot be ordered.
func NewOrder(cart *Cart) (*Order, error) {
	if len(cart.Items) == 0 {
		return nil, apperrors.Field("items", "Cart is empty")
	}

	order := &Order{ID: uuid.New(), CartID: cart.ID, Status: OrderPending}
	for i, item := range cart.Items {
		line, err := item.LineTotal()
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, &OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Position:    i,
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			UnitPrice:   RoundMoney(item.Product.Price),
			Quantity:    item.Quantity,
			LineTotal:   line,
		})
	}

	total, err := cart.Total()
	if err != nil {
		return nil, err
	}
	order.Total = total
	return order, nil
}

// PlaceFor ties the order to the user placing it.
func (o *Order) PlaceFor(user *User) {
	if user == nil {
		o.UserID = nil
		return
	}
	id := user.ID
	o.UserID = &id
}

// MarkPaid records a successful charge.
func (o *Order) MarkPaid(gateway, reference string) {
	o.Status = OrderPaid
	o.PaymentGateway = gateway
	o.PaymentReference = reference
}

func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
