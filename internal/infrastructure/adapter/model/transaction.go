package model

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents the database model for ledger transactions
type Transaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_txn_user_occurred,priority:1"`
	AccountID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_txn_user_occurred,priority:2"`
	ToAccountID   *uuid.UUID `gorm:"type:uuid"`
	CategoryID    *uuid.UUID `gorm:"type:uuid"`
	Type          string     `gorm:"not null;size:50"`
	Direction     string     `gorm:"not null;size:10"`
	AmountInCents int64      `gorm:"not null"`
	Note          string     `gorm:"type:text"`
	OccurredAt    time.Time  `gorm:"not null;index:idx_txn_user_occurred,priority:3"`
	Timezone      string     `gorm:"size:64"`
	ClientTxnID   string     `gorm:"size:255;default:''"`
	IsDeleted     bool       `gorm:"not null;default:false;index"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
