package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// CategoryRepository defines category persistence operations
type CategoryRepository interface {
	// Create persists a new category
	Create(ctx context.Context, category *entity.Category) error

	// GetByID retrieves a live category scoped to one user
	GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*entity.Category, error)

	// FindByNameAndType retrieves a live category by its normalized name and
	// type. Returns nil without error when no such row exists.
	FindByNameAndType(ctx context.Context, userID uuid.UUID, name string, categoryType entity.CategoryType) (*entity.Category, error)

	// List retrieves every live category of a user
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)

	// UpdateName persists a category rename
	UpdateName(ctx context.Context, category *entity.Category) error

	// SoftDelete marks a live category deleted
	SoftDelete(ctx context.Context, userID, categoryID uuid.UUID) error
}
