package model

import (
	"time"

	"github.com/google/uuid"
)

// Account represents the database model for accounts
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"not null;size:255"`
	Type           string    `gorm:"not null;size:50"`
	BalanceInCents int64     `gorm:"not null;default:0"` // cached projection
	IsDeleted      bool      `gorm:"not null;default:false;index"`

	// credit card metadata, null for every other type
	CreditLimitInCents *int64
	BillingDay         *int
	DueInDays          *int

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
