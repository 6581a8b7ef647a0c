// Package category manages transaction categories.
package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// Service manages categories
type Service struct {
	uow    persistence.UnitOfWork
	logger core.Logger
}

// NewService creates a category service
func NewService(uow persistence.UnitOfWork, logger core.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Create adds a category. Names are normalized to lowercase and must be
// unique per user within a type.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, categoryType entity.CategoryType) (*entity.Category, error) {
	category, err := entity.NewCategory(userID, name, categoryType)
	if err != nil {
		return nil, err
	}

	categories := s.uow.GetCategoryRepository(ctx)

	existing, err := categories.FindByNameAndType(ctx, userID, category.Name, category.Type)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s (%s)", errs.ErrDuplicateCategory, category.Name, category.Type)
	}

	if err := categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to persist category: %w", err)
	}

	s.logger.Info("Category created", map[string]any{
		"user_id":     userID.String(),
		"category_id": category.ID.String(),
		"name":        category.Name,
		"type":        string(category.Type),
	})
	return category, nil
}

// Get retrieves one live category.
func (s *Service) Get(ctx context.Context, userID, categoryID uuid.UUID) (*entity.Category, error) {
	return s.uow.GetCategoryRepository(ctx).GetByID(ctx, userID, categoryID)
}

// List retrieves every live category of a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	return s.uow.GetCategoryRepository(ctx).List(ctx, userID)
}

// Rename changes a category's name. The type is fixed for life because
// historical transactions rely on the type-match rule.
func (s *Service) Rename(ctx context.Context, userID, categoryID uuid.UUID, name string) (*entity.Category, error) {
	normalized := entity.NormalizeCategoryName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: category name is required", errs.ErrInvalidRequest)
	}

	categories := s.uow.GetCategoryRepository(ctx)

	category, err := categories.GetByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	existing, err := categories.FindByNameAndType(ctx, userID, normalized, category.Type)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil && existing.ID != categoryID {
		return nil, fmt.Errorf("%w: %s (%s)", errs.ErrDuplicateCategory, normalized, category.Type)
	}

	category.Name = normalized
	if err := categories.UpdateName(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to persist category changes: %w", err)
	}

	s.logger.Info("Category renamed", map[string]any{
		"user_id":     userID.String(),
		"category_id": categoryID.String(),
		"name":        normalized,
	})
	return category, nil
}

// Archive soft-deletes a category. Existing transactions keep their label.
func (s *Service) Archive(ctx context.Context, userID, categoryID uuid.UUID) error {
	if err := s.uow.GetCategoryRepository(ctx).SoftDelete(ctx, userID, categoryID); err != nil {
		return err
	}

	s.logger.Info("Category archived", map[string]any{
		"user_id":     userID.String(),
		"category_id": categoryID.String(),
	})
	return nil
}
