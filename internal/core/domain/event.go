package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent is the notification emitted to a payee's live sessions
// after a transfer commits. It carries only what the recipient's UI
// needs to render the incoming payment.
type PaymentEvent struct {
	TransactionID    uuid.UUID `json:"transaction_id"`
	Amount           int64     `json:"amount"`
	PayerDisplayName string    `json:"payer_display_name"`
	OccurredAt       time.Time `json:"occurred_at"`
}
