package pagination

import (
	"fmt"
	"sort"
	"strings"

	"storefront/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1000000
)

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// Columns maps the sort keys an endpoint accepts to the SQL column behind each.
type Columns map[string]string

var (
	ProductColumns = Columns{
		"name":      "name",
		"price":     "price",
		"createdAt": "created_at",
	}
	UserColumns = Columns{
		"name":      "name",
		"email":     "email",
		"createdAt": "created_at",
	}
	CategoryColumns = Columns{
		"name":      "name",
		"createdAt": "created_at",
	}
	OrderColumns = Columns{
		"total":     "total",
		"createdAt": "created_at",
	}
)

func (c Columns) keys() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// Query is the raw input. Nil and empty fields take defaults.
type Query struct {
	Page   *int
	Limit  *int
	Sort   Direction
	SortBy string
}

type Order struct {
	Column    string
	Direction Direction
}

// Request is a normalized, bounded page request.
type Request struct {
	Page   int
	Offset int
	Limit  int
	Order  *Order
}

// Normalize applies defaults, checks the sort key against columns and
// clamps the page size to MaxLimit.
func Normalize(q Query, columns Columns) (Request, error) {
	fields := map[string]string{}

	page := DefaultPage
	if q.Page != nil {
		page = *q.Page
		if page < 1 {
			fields["page"] = "Page must be at least 1"
		} else if page > MaxPage {
			page = MaxPage
		}
	}

	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
		if limit < 1 {
			fields["limit"] = "Limit must be at least 1"
		} else if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	direction := DESC
	if q.Sort != "" {
		direction = Direction(strings.ToUpper(string(q.Sort)))
		if direction != ASC && direction != DESC {
			fields["sort"] = "Sort must be one of: ASC DESC"
		}
	}

	var order *Order
	if q.SortBy != "" {
		column, ok := columns[q.SortBy]
		if !ok {
			fields["sortBy"] = fmt.Sprintf("SortBy must be one of: %s", columns.keys())
		} else {
			order = &Order{Column: column, Direction: direction}
		}
	}

	if len(fields) > 0 {
		return Request{}, apperrors.Validation(fields)
	}

	return Request{
		Page:   page,
		Offset: (page - 1) * limit,
		Limit:  limit,
		Order:  order,
	}, nil
}

// Apply adds offset, limit and (when set) ordering to a query.
func (r Request) Apply(db *gorm.DB) *gorm.DB {
	db = db.Offset(r.Offset).Limit(r.Limit)
	if r.Order != nil {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: r.Order.Column},
			Desc:   r.Order.Direction == DESC,
		})
	}
	return db
}

// Scope is Apply in the form gorm's Scopes expects.
func (r Request) Scope() func(*gorm.DB) *gorm.DB {
	return r.Apply
}

// Page is one page of results plus the total row count.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](items []T, req Request, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Limit > 0 {
		pages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

// Map converts a page's items, keeping its counters.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{Items: out, Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}
