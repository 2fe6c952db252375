package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is an immutable ledger entry recording one completed
// transfer. Rows are append-only: they are never updated or deleted.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	PayerID   uuid.UUID `json:"payer_id"`
	PayeeID   uuid.UUID `json:"payee_id"`
	Amount    int64     `json:"amount"` // Smallest currency unit, always > 0
	CreatedAt time.Time `json:"created_at"`
}

// LedgerEntry is a Transaction joined with the payer's display name,
// as returned by payee-side ledger queries.
type LedgerEntry struct {
	Transaction
	PayerDisplayName string `json:"payer_display_name"`
}
