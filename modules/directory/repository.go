package directory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/example/storefront/domain/directory"
)

var (
	// ErrMemberNotFound is returned when no directory member matches the id.
	ErrMemberNotFound = errors.New("member not found")
	// ErrEmailInUse is returned when the email is already in the directory.
	ErrEmailInUse = errors.New("email already in use")
)

// Repository persists directory members.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the directory_members table if needed.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Member{})
}

// Create inserts a new member. The unique index on email is authoritative:
// a duplicate insert maps to ErrEmailInUse.
func (r *Repository) Create(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrEmailInUse
		}
		return err
	}
	return nil
}

// GetByID retrieves a member by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// List returns all members, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Member, error) {
	var members []domain.Member
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Update saves the member. Duplicate email maps to ErrEmailInUse.
func (r *Repository) Update(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrEmailInUse
		}
		return err
	}
	return nil
}

// Delete removes a member by id. Returns ErrMemberNotFound when no row
// was deleted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Member{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
