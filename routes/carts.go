package routes

import (
	"storefront/apperrors"
	"storefront/models"
	"storefront/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) publishCart(eventType string, cartID uuid.UUID, payload any) {
	h.Events.Publish(realtime.NewEvent(eventType, "cart", cartID.String(), payload))
}

// createCart - POST /carts
func (h *Handler) createCart(c *fiber.Ctx) error {
	cart := &models.Cart{}
	if err := h.Carts.Create(c.UserContext(), cart); err != nil {
		return err
	}

	dto, err := toCartDto(cart)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto)
}

// getCart - GET /carts/:cartId
func (h *Handler) getCart(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	cart, err := h.Carts.FindByID(c.UserContext(), cartID)
	if err != nil {
		return err
	}

	dto, err := toCartDto(cart)
	if err != nil {
		return err
	}
	return c.JSON(dto)
}

// deleteCart - DELETE /carts/:cartId
func (h *Handler) deleteCart(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	if err := h.Carts.Delete(c.UserContext(), cartID); err != nil {
		return err
	}
	h.publishCart(realtime.CartDeleted, cartID, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// addCartItem - POST /carts/:cartId/items
// Adding a product already in the cart bumps its quantity by one.
func (h *Handler) addCartItem(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	var req AddCartItemRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	product, err := h.Products.FindByID(ctx, uuid.MustParse(req.ProductID))
	if err != nil {
		return err
	}
	cart, err := h.Carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}

	item := cart.ItemByProductID(product.ID)
	if item != nil {
		if err := item.SetQuantity(item.Quantity + 1); err != nil {
			return err
		}
	} else {
		item = models.NewCartItem(product, 1)
		if err := cart.AddItem(item); err != nil {
			return err
		}
	}

	if err := h.Carts.Save(ctx, cart); err != nil {
		return err
	}

	dto, err := toCartItemDto(item)
	if err != nil {
		return err
	}
	h.publishCart(realtime.CartItemAdded, cart.ID, dto)
	return c.Status(fiber.StatusCreated).JSON(dto)
}

// updateCartItem - PUT /carts/:cartId/items/:productId
func (h *Handler) updateCartItem(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		return err
	}
	var req UpdateCartItemRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	cart, err := h.Carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	item := cart.ItemByProductID(productID)
	if item == nil {
		return apperrors.NotFound("Cart item")
	}
	if err := item.SetQuantity(req.Quantity); err != nil {
		return err
	}
	if err := h.Carts.Save(ctx, cart); err != nil {
		return err
	}

	dto, err := toCartItemDto(item)
	if err != nil {
		return err
	}
	h.publishCart(realtime.CartItemUpdated, cart.ID, dto)
	return c.JSON(dto)
}

// removeCartItem - DELETE /carts/:cartId/items/:productId
func (h *Handler) removeCartItem(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	cart, err := h.Carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	if _, err := cart.RemoveItemByProductID(productID); err != nil {
		return err
	}
	if err := h.Carts.Save(ctx, cart); err != nil {
		return err
	}

	h.publishCart(realtime.CartItemRemoved, cart.ID, fiber.Map{"productId": productID})
	return c.SendStatus(fiber.StatusNoContent)
}

// clearCart - DELETE /carts/:cartId/items
func (h *Handler) clearCart(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	cart, err := h.Carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	cart.Clear()
	if err := h.Carts.Save(ctx, cart); err != nil {
		return err
	}

	h.publishCart(realtime.CartCleared, cart.ID, nil)
	return c.SendStatus(fiber.StatusNoContent)
}
