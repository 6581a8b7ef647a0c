package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	coreport "github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/model"
)

// CategoryRepository implements the CategoryRepository port using GORM
type CategoryRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCategoryRepository creates a new CategoryRepository instance
func NewCategoryRepository(db *gorm.DB, logger coreport.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *CategoryRepository) modelToEntity(m *model.Category) *entity.Category {
	return &entity.Category{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Type:      entity.CategoryType(m.Type),
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Create persists a new category
func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	m := model.Category{
		ID:        category.ID,
		UserID:    category.UserID,
		Name:      category.Name,
		Type:      string(category.Type),
		IsDeleted: category.IsDeleted,
	}

	result := r.db.WithContext(ctx).Create(&m)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateCategory
		}
		r.logger.Error("Failed to create category", map[string]any{
			"category_id": category.ID.String(),
			"user_id":     category.UserID.String(),
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	category.CreatedAt = m.CreatedAt
	category.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID retrieves a live category scoped to one user
func (r *CategoryRepository) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*entity.Category, error) {
	var m model.Category
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", categoryID, userID, false).
		First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// FindByNameAndType retrieves a live category by normalized name and type
func (r *CategoryRepository) FindByNameAndType(ctx context.Context, userID uuid.UUID, name string, categoryType entity.CategoryType) (*entity.Category, error) {
	var m model.Category
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND type = ? AND is_deleted = ?", userID, name, string(categoryType), false).
		First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// List retrieves every live category of a user
func (r *CategoryRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var rows []model.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("type ASC, name ASC").
		Find(&rows).Error

	if err != nil {
		r.logger.Error("Failed to list categories", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	out := make([]*entity.Category, 0, len(rows))
	for i := range rows {
		out = append(out, r.modelToEntity(&rows[i]))
	}
	return out, nil
}

// UpdateName persists a category rename
func (r *CategoryRepository) UpdateName(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", category.ID, category.UserID, false).
		Update("name", category.Name)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateCategory
		}
		r.logger.Error("Failed to rename category", map[string]any{
			"category_id": category.ID.String(),
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrCategoryNotFound, category.ID)
	}
	return nil
}

// SoftDelete marks a live category deleted
func (r *CategoryRepository) SoftDelete(ctx context.Context, userID, categoryID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", categoryID, userID, false).
		Update("is_deleted", true)

	if result.Error != nil {
		r.logger.Error("Failed to archive category", map[string]any{
			"category_id": categoryID.String(),
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrCategoryNotFound, categoryID)
	}
	return nil
}
