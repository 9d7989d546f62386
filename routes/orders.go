package routes

import (
	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"
	"storefront/realtime"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CheckoutRequest struct {
	UserID string `json:"userId" validate:"omitempty,uuid"`
}

// checkout - POST /carts/:cartId/checkout
// The body is optional; a userId ties the order to that user. The order is
// written, the cart emptied and the payment taken in one transaction, so a
// declined charge leaves the cart untouched.
func (h *Handler) checkout(c *fiber.Ctx) error {
	cartID, err := parseUUIDParam(c, "cartId")
	if err != nil {
		return err
	}
	var req CheckoutRequest
	if len(c.Body()) > 0 {
		if err := h.parseBody(c, &req); err != nil {
			return err
		}
	}
	if h.Payments == nil {
		return apperrors.InvalidState("No payment gateway configured")
	}

	ctx := c.UserContext()
	cart, err := h.Carts.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	order, err := models.NewOrder(cart)
	if err != nil {
		return err
	}

	userID, err := parseOptionalUUID("userId", req.UserID)
	if err != nil {
		return err
	}
	if userID != nil {
		user, err := h.Users.FindByID(ctx, *userID)
		if err != nil {
			return err
		}
		order.PlaceFor(user)
	}

	err = h.Orders.Place(ctx, order, func(o *models.Order) error {
		reference, err := h.Payments.Charge(ctx, o.ID, o.Total)
		if err != nil {
			h.Log.Warn("Payment declined",
				zap.String("order_id", o.ID.String()),
				zap.String("gateway", h.Payments.Name()),
				zap.Error(err),
			)
			return apperrors.New(fiber.StatusPaymentRequired, "Payment failed", err)
		}
		o.MarkPaid(h.Payments.Name(), reference)
		return nil
	})
	if err != nil {
		return err
	}
	cart.Clear()

	h.publishCart(realtime.CartCheckedOut, cart.ID, fiber.Map{"orderId": order.ID})
	c.Location("/api/orders/" + order.ID.String())
	return c.Status(fiber.StatusCreated).JSON(toOrderDto(order))
}

// getOrder - GET /orders/:id
func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Orders.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toOrderDto(order))
}

// getUserOrders - GET /users/:id/orders
func (h *Handler) getUserOrders(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	page, err := parsePageQuery(c, pagination.OrderColumns, "createdAt")
	if err != nil {
		return err
	}
	result, err := h.Orders.FindPageByUser(c.UserContext(), user.ID, page)
	if err != nil {
		return err
	}
	return c.JSON(pagination.Map(result, toOrderDto))
}
