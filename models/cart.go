package models

import (
	"net/http"
	"slices"
	"time"

	"storefront/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrDuplicateItem is returned by AddItem when the cart already holds the product.
// Callers look the item up first and bump its quantity instead.
var ErrDuplicateItem = apperrors.New(http.StatusConflict, "Cart already contains this product", nil)

// Cart owns its items. Items removed from the collection are orphans and
// are deleted by the repository on the next save.
type Cart struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Items     []*CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	cart *Cart
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewCartItem returns a detached item for product. A nil product gives an
// item whose totals fail with InvalidState.
func NewCartItem(product *Product, quantity int) *CartItem {
	item := &CartItem{Product: product, Quantity: quantity}
	if product != nil {
		item.ProductID = product.ID
	}
	return item
}

// Cart is the back-reference set by Cart.AddItem.
func (i *CartItem) Cart() *Cart {
	return i.cart
}

func (i *CartItem) productID() uuid.UUID {
	if i.Product != nil {
		return i.Product.ID
	}
	return i.ProductID
}

func (i *CartItem) SetQuantity(quantity int) error {
	if quantity < 1 {
		return apperrors.Field("quantity", "Quantity must be at least 1")
	}
	i.Quantity = quantity
	return nil
}

// LineTotal is price * quantity, rounded half to even.
func (i *CartItem) LineTotal() (decimal.Decimal, error) {
	if i.Product == nil {
		return decimal.Zero, apperrors.InvalidState("cart item " + i.ID.String() + " has no product loaded")
	}
	return RoundMoney(i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))), nil
}

// Link restores item back-references after the cart was loaded from storage.
func (c *Cart) Link() {
	for _, item := range c.Items {
		item.cart = c
	}
}

func (c *Cart) ItemByProductID(productID uuid.UUID) *CartItem {
	for _, item := range c.Items {
		if item.productID() == productID {
			return item
		}
	}
	return nil
}

// AddItem inserts item and points it at c. At most one item per product.
func (c *Cart) AddItem(item *CartItem) error {
	if item.Quantity < 1 {
		return apperrors.Field("quantity", "Quantity must be at least 1")
	}
	if c.ItemByProductID(item.productID()) != nil {
		return ErrDuplicateItem
	}
	item.ProductID = item.productID()
	item.CartID = c.ID
	item.cart = c
	c.Items = append(c.Items, item)
	return nil
}

// RemoveItemByProductID detaches the matching item and returns it.
func (c *Cart) RemoveItemByProductID(productID uuid.UUID) (*CartItem, error) {
	item := c.ItemByProductID(productID)
	if item == nil {
		return nil, apperrors.NotFound("Cart item")
	}
	c.Items = slices.DeleteFunc(c.Items, func(existing *CartItem) bool {
		return existing == item
	})
	item.cart = nil
	item.CartID = uuid.Nil
	return item, nil
}

// Clear drops every item. Item back-references are left as they were.
func (c *Cart) Clear() {
	c.Items = nil
}

// Total sums the line totals. An empty cart totals zero.
func (c *Cart) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range c.Items {
		line, err := item.LineTotal()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(line)
	}
	return RoundMoney(total), nil
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
