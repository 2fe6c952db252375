package ports

import (
	"context"
	"time"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// TransferService executes balance transfers between two accounts.
type TransferService interface {
	// ExecuteTransfer atomically moves amount from payer to payee and
	// appends a ledger entry. On success the committed transaction is
	// returned and a PaymentEvent is emitted to the payee's live
	// sessions (best-effort, outside the atomic unit).
	ExecuteTransfer(ctx context.Context, payerID, payeeID uuid.UUID, amount int64) (*domain.Transaction, error)
}

// LedgerService answers read-only queries against accounts and the ledger.
type LedgerService interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListTransactions(ctx context.Context, payeeID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

// EventPublisher fans a payment event out to the payee's live sessions.
// Publish never fails the caller; delivery problems are absorbed.
type EventPublisher interface {
	Publish(payeeID uuid.UUID, event domain.PaymentEvent)
}

// AuthService authenticates accounts and issues tokens.
type AuthService interface {
	// Login verifies credentials and returns a signed token plus expiry.
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// ProvisionRequest holds validated input for account creation.
type ProvisionRequest struct {
	Email       string
	Password    string
	Role        domain.Role
	DisplayName string
}

// ProvisionService creates accounts out-of-band of the transfer core.
type ProvisionService interface {
	CreateAccount(ctx context.Context, req ProvisionRequest) (*domain.Account, error)
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles signed token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed token claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.Role
}
