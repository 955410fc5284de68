package api

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/modules/auth"
	"github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/directory"
	"github.com/example/storefront/modules/feedback"
	"github.com/example/storefront/modules/orders"
)

// Handlers contains HTTP handlers for the API. The auth module is
// reached through the service container; the remaining services are
// wired in after all modules have started.
type Handlers struct {
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort

	catalog   *catalog.Service
	feed      *catalog.FeedClient
	orders    *orders.Service
	directory *directory.Service
	feedback  *feedback.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer mono.ServiceContainer, authAdapter auth.AuthPort) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		authAdapter:   authAdapter,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Name, email and password are required")
	}

	var resp auth.RegisterResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	var resp auth.LoginResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Verify confirms the bearer token presented by the client is still
// valid. The auth middleware has already validated the token; this
// handler only echoes the identity back.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c)
	}

	return c.Status(fiber.StatusOK).JSON(VerifyResponse{
		Valid: true,
		User: PublicUser{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
		},
	})
}

// SubmitFeedback handles feedback submissions.
func (h *Handlers) SubmitFeedback(c *fiber.Ctx) error {
	if h.feedback == nil {
		return serviceUnavailable(c)
	}

	var req feedback.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	fb, err := h.feedback.Submit(c.UserContext(), &req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "required"):
			return badRequest(c, "All fields are required")
		case strings.Contains(err.Error(), "invalid email"):
			return badRequest(c, "Invalid email address")
		default:
			return internalError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fb)
}

// CacheStats returns catalog cache hit/miss statistics.
func (h *Handlers) CacheStats(c *fiber.Ctx) error {
	if h.catalog == nil {
		return serviceUnavailable(c)
	}
	return c.JSON(h.catalog.CacheStats())
}

// handleAuthError maps auth service errors to HTTP responses. Errors
// cross the service container as messages, so they are matched by
// content rather than identity.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid credentials"):
		return badRequest(c, "Invalid credentials")
	case strings.Contains(errStr, "email already in use"):
		return badRequest(c, "Email already in use")
	case strings.Contains(errStr, "invalid email format"):
		return badRequest(c, "Invalid email format")
	case strings.Contains(errStr, "required"):
		return badRequest(c, "Name, email and password are required")
	case strings.Contains(errStr, "password must be"):
		return badRequest(c, "Password must be between 6 and 72 characters")
	default:
		return internalError(c, err)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

func serviceUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
		Error:   "unavailable",
		Message: "Service not ready",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
