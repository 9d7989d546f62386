package routes

import (
	"time"

	"storefront/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money goes over the wire as a fixed two-place string.
func money(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyPlaces)
}

type CartProductDto struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type CartItemDto struct {
	Product    CartProductDto `json:"product"`
	Quantity   int            `json:"quantity"`
	TotalPrice string         `json:"totalPrice"`
}

type CartDto struct {
	ID         uuid.UUID     `json:"id"`
	Items      []CartItemDto `json:"items"`
	TotalPrice string        `json:"totalPrice"`
	ItemCount  int           `json:"itemCount"`
	CreatedAt  time.Time     `json:"createdAt"`
}

func toCartItemDto(item *models.CartItem) (CartItemDto, error) {
	line, err := item.LineTotal()
	if err != nil {
		return CartItemDto{}, err
	}
	return CartItemDto{
		Product: CartProductDto{
			ID:    item.Product.ID,
			Name:  item.Product.Name,
			Price: money(item.Product.Price),
		},
		Quantity:   item.Quantity,
		TotalPrice: money(line),
	}, nil
}

func toCartDto(cart *models.Cart) (CartDto, error) {
	total, err := cart.Total()
	if err != nil {
		return CartDto{}, err
	}
	items := make([]CartItemDto, 0, len(cart.Items))
	for _, item := range cart.Items {
		dto, err := toCartItemDto(item)
		if err != nil {
			return CartDto{}, err
		}
		items = append(items, dto)
	}
	return CartDto{
		ID:         cart.ID,
		Items:      items,
		TotalPrice: money(total),
		ItemCount:  cart.ItemCount(),
		CreatedAt:  cart.CreatedAt,
	}, nil
}

type ProductDto struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        string     `json:"price"`
	CategoryID   *uuid.UUID `json:"categoryId"`
	CategoryName string     `json:"categoryName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func toProductDto(p *models.Product) ProductDto {
	dto := ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		dto.CategoryName = p.Category.Name
	}
	return dto
}

func toProductDtos(products []*models.Product) []ProductDto {
	out := make([]ProductDto, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDto(p))
	}
	return out
}

type CategoryDto struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Products  []ProductDto `json:"products,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toCategoryDto(c *models.Category) CategoryDto {
	dto := CategoryDto{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	if c.Products != nil {
		dto.Products = toProductDtos(c.Products)
	}
	return dto
}

type UserDto struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDto(u *models.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type AddressDto struct {
	ID     uuid.UUID `json:"id"`
	Street string    `json:"street"`
	City   string    `json:"city"`
	Zip    string    `json:"zip"`
}

type ProfileDto struct {
	ID            uuid.UUID `json:"id"`
	Bio           string    `json:"bio"`
	PhoneNumber   string    `json:"phoneNumber"`
	DateOfBirth   *string   `json:"dateOfBirth"`
	LoyaltyPoints int       `json:"loyaltyPoints"`
}

type TagDto struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type UserDetailDto struct {
	UserDto
	Addresses []AddressDto `json:"addresses"`
	Profile   *ProfileDto  `json:"profile"`
	Tags      []TagDto     `json:"tags"`
}

const dateLayout = "2006-01-02"

func toAddressDto(a *models.Address) AddressDto {
	return AddressDto{ID: a.ID, Street: a.Street, City: a.City, Zip: a.Zip}
}

func toProfileDto(p *models.Profile) *ProfileDto {
	if p == nil {
		return nil
	}
	dto := &ProfileDto{ID: p.ID, Bio: p.Bio, PhoneNumber: p.PhoneNumber, LoyaltyPoints: p.LoyaltyPoints}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format(dateLayout)
		dto.DateOfBirth = &dob
	}
	return dto
}

func toTagDtos(tags []*models.Tag) []TagDto {
	out := make([]TagDto, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagDto{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	return out
}

func toUserDetailDto(u *models.User) UserDetailDto {
	addresses := make([]AddressDto, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		addresses = append(addresses, toAddressDto(a))
	}
	return UserDetailDto{
		UserDto:   toUserDto(u),
		Addresses: addresses,
		Profile:   toProfileDto(u.Profile),
		Tags:      toTagDtos(u.Tags),
	}
}

type OrderItemDto struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   string    `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	TotalPrice  string    `json:"totalPrice"`
}

type OrderDto struct {
	ID               uuid.UUID      `json:"id"`
	CartID           uuid.UUID      `json:"cartId"`
	UserID           *uuid.UUID     `json:"userId"`
	Status           string         `json:"status"`
	Items            []OrderItemDto `json:"items"`
	TotalPrice       string         `json:"totalPrice"`
	ItemCount        int            `json:"itemCount"`
	PaymentGateway   string         `json:"paymentGateway"`
	PaymentReference string         `json:"paymentReference"`
	CreatedAt        time.Time      `json:"createdAt"`
}

func toOrderDto(o *models.Order) OrderDto {
	items := make([]OrderItemDto, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDto{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   money(item.UnitPrice),
			Quantity:    item.Quantity,
			TotalPrice:  money(item.LineTotal),
		})
	}
	return OrderDto{
		ID:               o.ID,
		CartID:           o.CartID,
		UserID:           o.UserID,
		Status:           o.Status,
		Items:            items,
		TotalPrice:       money(o.Total),
		ItemCount:        o.ItemCount(),
		PaymentGateway:   o.PaymentGateway,
		PaymentReference: o.PaymentReference,
		CreatedAt:        o.CreatedAt,
	}
}
