package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountLock serializes ledger mutations per account across processes
type AccountLock struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;not null"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey;not null"`
	LockedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for AccountLock
func (AccountLock) TableName() string {
	return "account_locks"
}
