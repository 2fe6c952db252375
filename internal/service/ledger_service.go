package service

import (
	"context"
	"fmt"

	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"

	"github.com/google/uuid"
)

const defaultListLimit = 50

// LedgerServiceImpl implements ports.LedgerService: read-only queries
// against accounts and the transaction ledger.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(accountRepo ports.AccountRepository, txRepo ports.TransactionRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// GetAccount fetches an account by ID.
func (s *LedgerServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("get account: %w", err))
	}
	if a == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return a, nil
}

// ListTransactions returns the payee's received transfers, most recent first.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, payeeID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	entries, err := s.txRepo.ListByPayee(ctx, payeeID, limit)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("list transactions: %w", err))
	}
	return entries, nil
}
