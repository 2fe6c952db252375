package ports

import (
	"context"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside the transfer engine's atomic
// unit and rely on pessimistic row locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByIDForUpdate fetches an account with SELECT ... FOR UPDATE.
	// Returns nil, nil when the account does not exist.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	// Debit subtracts amount from the account's balance inside tx.
	Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error
	// Credit adds amount to the account's balance inside tx.
	Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error
}

// TransactionRepository defines persistence for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	// ListByPayee returns the payee's received transactions joined with
	// the payer display name, most recent first.
	ListByPayee(ctx context.Context, payeeID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
