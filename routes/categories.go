package routes

import (
	"strings"

	"storefront/models"
	"storefront/pagination"

	"github.com/gofiber/fiber/v2"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

// createCategory - POST /categories
func (h *Handler) createCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	category := &models.Category{Name: strings.TrimSpace(req.Name)}
	if err := h.Categories.Create(c.UserContext(), category); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toCategoryDto(category))
}

// getAllCategories - GET /categories
func (h *Handler) getAllCategories(c *fiber.Ctx) error {
	page, err := parsePageQuery(c, pagination.CategoryColumns, "name")
	if err != nil {
		return err
	}
	result, err := h.Categories.FindPage(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(pagination.Map(result, toCategoryDto))
}

// getCategory - GET /categories/:id, with its products
func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	category, err := h.Categories.FindByID(c.UserContext(), id, true)
	if err != nil {
		return err
	}
	dto := toCategoryDto(category)
	if dto.Products == nil {
		dto.Products = []ProductDto{}
	}
	return c.JSON(dto)
}

// updateCategory - PATCH /categories/:id
func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	category, err := h.Categories.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	category.Name = strings.TrimSpace(req.Name)
	if err := h.Categories.Save(ctx, category); err != nil {
		return err
	}
	return c.JSON(toCategoryDto(category))
}

// deleteCategory - DELETE /categories/:id
func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
