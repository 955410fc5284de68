package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/storefront/domain/product"
)

// ListProducts returns all products, newest first.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}

	products, err := h.catalog.List(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(products)
}

// GetProduct returns a single product by id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}

	id, err := parseProductID(c)
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	product, err := h.catalog.GetByID(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if product == nil {
		return notFound(c, "Product not found")
	}
	return c.JSON(product)
}

// CreateProduct creates a new product.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}

	var req domain.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Price <= 0 {
		return badRequest(c, "Name and a positive price are required")
	}

	product, err := h.catalog.Create(c.UserContext(), &req)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct applies a partial update to a product.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}

	id, err := parseProductID(c)
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req domain.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	product, err := h.catalog.Update(c.UserContext(), id, &req)
	if err != nil {
		return internalError(c, err)
	}
	if product == nil {
		return notFound(c, "Product not found")
	}
	return c.JSON(product)
}

// DeleteProduct removes a product.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}

	id, err := parseProductID(c)
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	deleted, err := h.catalog.Delete(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if !deleted {
		return notFound(c, "Product not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ProductFeed proxies the external product feed, served from cache
// when possible.
func (h *Handlers) ProductFeed(c *fiber.Ctx) error {
	if h.feed == nil {
		return serviceUnavailable(c)
	}

	products, err := h.feed.Fetch(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   "bad_gateway",
			Message: "Product feed unavailable",
		})
	}
	return c.JSON(products)
}

func parseProductID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid product id")
	}
	return uint(id), nil
}
