package model

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the database model for categories
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null;size:255"` // stored lowercase
	Type      string    `gorm:"not null;size:20"`
	IsDeleted bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}
