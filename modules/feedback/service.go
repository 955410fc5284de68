package feedback

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"

	domain "github.com/example/storefront/domain/feedback"
)

var (
	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("invalid email address")
)

// AckMailer queues the acknowledgement email for a feedback submitter.
type AckMailer interface {
	EnqueueFeedbackAck(ctx context.Context, name, email, message string) error
}

// SubmitFeedbackRequest carries a feedback submission.
type SubmitFeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Service implements feedback intake. Submissions are persisted first;
// the acknowledgement email is queued best-effort afterwards.
type Service struct {
	repo   *Repository
	mailer AckMailer
}

// NewService creates a new feedback Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// SetMailer wires the acknowledgement mailer. Without one, submissions
// are still accepted and persisted.
func (s *Service) SetMailer(mailer AckMailer) {
	s.mailer = mailer
}

// Submit validates and persists a feedback entry, then queues the
// acknowledgement email. A queue failure does not fail the submission.
func (s *Service) Submit(ctx context.Context, req *SubmitFeedbackRequest) (*domain.Feedback, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	message := strings.TrimSpace(req.Message)

	if name == "" || email == "" || message == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	fb := &domain.Feedback{
		Name:    name,
		Email:   email,
		Message: message,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.EnqueueFeedbackAck(ctx, name, email, message); err != nil {
			log.Printf("[feedback] Failed to queue acknowledgement for %s: %v", email, err)
		}
	}

	return fb, nil
}

// List returns all feedback entries, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.repo.List(ctx)
}
