package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"

	domain "github.com/example/storefront/domain/order"
)

const referenceLength = 10

var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotOwner is returned when an order belongs to a different user.
	ErrNotOwner = errors.New("not authorized to access this order")
	// ErrEmptyOrder is returned when an order has no items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrInvalidTotal is returned when the order total is not positive.
	ErrInvalidTotal = errors.New("order total must be positive")
)

// CreateOrderRequest carries the fields accepted at checkout.
type CreateOrderRequest struct {
	Items []domain.Item `json:"items"`
	Total float64       `json:"total"`
}

// Service provides order operations scoped to the authenticated user.
type Service struct {
	repo    *domain.Repository
	newCode func() string
}

// NewService creates a new order service.
func NewService(repo *domain.Repository) (*Service, error) {
	// Base58-ish alphabet: no 0/O or 1/l/I, safe to read over the phone.
	gen, err := nanoid.CustomASCII("23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz", referenceLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference generator: %w", err)
	}
	return &Service{
		repo:    repo,
		newCode: gen,
	}, nil
}

// Create stores a new pending order for the user. Exactly one durable
// write happens; validation failures leave the store untouched.
func (s *Service) Create(ctx context.Context, userID string, req *CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if req.Total <= 0 {
		return nil, ErrInvalidTotal
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrEmptyOrder, item.Title, item.Quantity)
		}
	}

	order := &domain.Order{
		ID:        uuid.New().String(),
		Reference: s.newCode(),
		UserID:    userID,
		Items:     req.Items,
		Total:     req.Total,
		Status:    domain.StatusPending,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns a single order, enforcing that it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}
	return order, nil
}
