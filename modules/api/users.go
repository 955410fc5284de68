package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/modules/directory"
)

// CreateMember adds an entry to the admin user directory.
func (h *Handlers) CreateMember(c *fiber.Ctx) error {
	if h.directory == nil {
		return serviceUnavailable(c)
	}

	var req directory.CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	member, err := h.directory.Create(c.UserContext(), &req)
	if err != nil {
		return h.handleDirectoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// ListMembers returns all directory entries, newest first.
func (h *Handlers) ListMembers(c *fiber.Ctx) error {
	if h.directory == nil {
		return serviceUnavailable(c)
	}

	members, err := h.directory.List(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(members)
}

// UpdateMember applies a partial update to a directory entry.
func (h *Handlers) UpdateMember(c *fiber.Ctx) error {
	if h.directory == nil {
		return serviceUnavailable(c)
	}

	var req directory.UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	member, err := h.directory.Update(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return h.handleDirectoryError(c, err)
	}
	return c.JSON(member)
}

// DeleteMember removes a directory entry.
func (h *Handlers) DeleteMember(c *fiber.Ctx) error {
	if h.directory == nil {
		return serviceUnavailable(c)
	}

	if err := h.directory.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.handleDirectoryError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) handleDirectoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, directory.ErrMemberNotFound):
		return notFound(c, "Member not found")
	case errors.Is(err, directory.ErrEmailInUse):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Email already in use",
		})
	case errors.Is(err, directory.ErrMissingFields), errors.Is(err, directory.ErrInvalidEmail):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}
