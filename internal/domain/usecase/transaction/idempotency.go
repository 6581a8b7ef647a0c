package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// findExistingByClientTxnID implements the idempotency gate for create.
// A retried request carrying the same client transaction ID gets the row the
// first attempt wrote, unchanged. Returns nil when the key is unused or
// absent.
func (s *Service) findExistingByClientTxnID(ctx context.Context, txns persistence.TransactionRepository, userID uuid.UUID, clientTxnID string) (*entity.Transaction, error) {
	if clientTxnID == "" {
		return nil, nil
	}

	existing, err := txns.FindByClientTxnID(ctx, userID, clientTxnID)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	if existing != nil {
		s.logger.Info("Duplicate create suppressed by idempotency key", map[string]any{
			"user_id":        userID.String(),
			"client_txn_id":  clientTxnID,
			"transaction_id": existing.ID.String(),
		})
	}
	return existing, nil
}
