package feedback

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/example/storefront/domain/feedback"
)

// Repository persists feedback submissions.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the feedback table if needed.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Feedback{})
}

// Create inserts a new feedback entry.
func (r *Repository) Create(ctx context.Context, fb *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

// List returns all feedback entries, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Feedback, error) {
	var entries []domain.Feedback
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
