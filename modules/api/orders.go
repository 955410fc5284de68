package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/modules/orders"
)

// CreateOrder stores an order for the authenticated user.
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	if h.orders == nil {
		return serviceUnavailable(c)
	}

	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c)
	}

	var req orders.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := h.orders.Create(c.UserContext(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidTotal):
			return badRequest(c, err.Error())
		default:
			return internalError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// ListOrders returns the authenticated user's orders, newest first.
func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	if h.orders == nil {
		return serviceUnavailable(c)
	}

	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.orders.ListForUser(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(list)
}

// GetOrder returns one of the authenticated user's orders.
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	if h.orders == nil {
		return serviceUnavailable(c)
	}

	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c)
	}

	order, err := h.orders.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			return notFound(c, "Order not found")
		case errors.Is(err, orders.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error:   "forbidden",
				Message: "You do not have access to this order",
			})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(order)
}
