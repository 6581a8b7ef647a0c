package dto

import (
	"time"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// CreateCategoryRequest is the request body for adding a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// UpdateCategoryRequest is the request body for renaming a category.
// The type is immutable.
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CategoryResponse is the wire shape of a category
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToCategoryResponse maps a domain category to its wire shape
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryResponses maps a slice of domain categories
func ToCategoryResponses(categories []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, ToCategoryResponse(c))
	}
	return out
}
