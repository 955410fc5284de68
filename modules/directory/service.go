package directory

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	domain "github.com/example/storefront/domain/directory"
)

var (
	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("name, email and role are required")
	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("invalid email address")
)

// CreateMemberRequest carries the fields for a new directory member.
type CreateMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateMemberRequest carries a partial update. Nil fields are left
// unchanged.
type UpdateMemberRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// Service implements the admin directory operations.
type Service struct {
	repo *Repository
}

// NewService creates a new directory Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and inserts a new member.
func (s *Service) Create(ctx context.Context, req *CreateMemberRequest) (*domain.Member, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	role := strings.TrimSpace(req.Role)

	if name == "" || email == "" || role == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	member := &domain.Member{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Get retrieves a member by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Member, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all members, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Member, error) {
	return s.repo.List(ctx)
}

// Update applies the non-nil fields of req to the member.
func (s *Service) Update(ctx context.Context, id string, req *UpdateMemberRequest) (*domain.Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrMissingFields
		}
		member.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
		member.Email = email
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if role == "" {
			return nil, ErrMissingFields
		}
		member.Role = role
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete removes a member by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
