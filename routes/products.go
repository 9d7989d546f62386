package routes

import (
	"strings"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"
	"storefront/realtime"
	"storefront/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var minPrice = decimal.RequireFromString("0.01")

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"notblank,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	CategoryID  string           `json:"categoryId" validate:"omitempty,uuid"`
}

// UpdateProductRequest is a partial update; nil fields are left alone.
// An empty categoryId removes the product from its category.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"categoryId"`
}

type SearchResponse struct {
	Products []ProductDto `json:"products"`
}

func checkPrice(price *decimal.Decimal) error {
	if price != nil && price.LessThan(minPrice) {
		return apperrors.Field("price", "Price must be at least 0.01")
	}
	return nil
}

func (h *Handler) publishProduct(eventType string, id uuid.UUID, payload any) {
	h.Events.Publish(realtime.NewEvent(eventType, "product", id.String(), payload))
}

// createProduct - POST /products
func (h *Handler) createProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := checkPrice(req.Price); err != nil {
		return err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       models.RoundMoney(*req.Price),
	}

	ctx := c.UserContext()
	// Validate if the CategoryID exists if provided
	if req.CategoryID != "" {
		category, err := h.Categories.FindByID(ctx, uuid.MustParse(req.CategoryID), false)
		if err != nil {
			return err
		}
		product.AssignCategory(category)
	}

	if err := h.Products.Create(ctx, product); err != nil {
		return err
	}

	dto := toProductDto(product)
	h.publishProduct(realtime.ProductCreated, product.ID, dto)
	c.Location("/api/products/" + product.ID.String())
	return c.Status(fiber.StatusCreated).JSON(dto)
}

// getAllProducts - GET /products
func (h *Handler) getAllProducts(c *fiber.Ctx) error {
	page, err := parsePageQuery(c, pagination.ProductColumns, "createdAt")
	if err != nil {
		return err
	}
	categoryID, err := parseOptionalUUID("categoryId", c.Query("categoryId"))
	if err != nil {
		return err
	}

	result, err := h.Products.FindPage(c.UserContext(), repository.ProductFilter{CategoryID: categoryID, Page: page})
	if err != nil {
		return err
	}
	return c.JSON(pagination.Map(result, toProductDto))
}

// searchProducts - GET /products/search?q=
func (h *Handler) searchProducts(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return apperrors.Field("q", "Query parameter 'q' is required")
	}

	products, err := h.Products.Search(c.UserContext(), query, pagination.MaxLimit)
	if err != nil {
		return err
	}
	return c.JSON(SearchResponse{Products: toProductDtos(products)})
}

// getProduct - GET /products/:id
func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.Products.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toProductDto(product))
}

// updateProduct - PATCH /products/:id
func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateProductRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	if err := checkPrice(req.Price); err != nil {
		return err
	}

	ctx := c.UserContext()
	product, err := h.Products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = models.RoundMoney(*req.Price)
	}
	if req.CategoryID != nil {
		categoryID, err := parseOptionalUUID("categoryId", *req.CategoryID)
		if err != nil {
			return err
		}
		if categoryID == nil {
			product.UnassignCategory()
		} else {
			category, err := h.Categories.FindByID(ctx, *categoryID, false)
			if err != nil {
				return err
			}
			product.AssignCategory(category)
		}
	}

	if err := h.Products.Save(ctx, product); err != nil {
		return err
	}

	dto := toProductDto(product)
	h.publishProduct(realtime.ProductUpdated, product.ID, dto)
	return c.JSON(dto)
}

// deleteProduct - DELETE /products/:id
func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	h.publishProduct(realtime.ProductDeleted, id, nil)
	return c.SendStatus(fiber.StatusNoContent)
}
