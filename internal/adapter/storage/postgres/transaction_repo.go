package postgres

import (
	"context"
	"fmt"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository over the
// append-only transactions table.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, payer_id, payee_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, t.ID, t.PayerID, t.PayeeID, t.Amount, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByPayee fetches the payee's received transactions, most recent
// first, joined with the payer account for the display name.
func (r *TransactionRepo) ListByPayee(ctx context.Context, payeeID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT t.id, t.payer_id, t.payee_id, t.amount, t.created_at, a.display_name
		FROM transactions t
		JOIN accounts a ON a.id = t.payer_id
		WHERE t.payee_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, payeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(&e.ID, &e.PayerID, &e.PayeeID, &e.Amount, &e.CreatedAt, &e.PayerDisplayName)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return entries, nil
}
