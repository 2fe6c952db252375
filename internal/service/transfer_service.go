package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService with pessimistic
// row locking: both account rows are locked FOR UPDATE for the duration
// of the check-debit-credit-record sequence, so two transfers touching
// the same payer serialize on the payer's row.
type TransferServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	transactor  ports.DBTransactor
	publisher   ports.EventPublisher // nil = notifications disabled
	log         zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		publisher:   publisher,
		log:         log,
	}
}

// ExecuteTransfer atomically moves amount from payer to payee.
func (s *TransferServiceImpl) ExecuteTransfer(ctx context.Context, payerID, payeeID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if payerID == payeeID {
		return nil, apperror.ErrSelfTransfer()
	}

	// Begin the atomic unit
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both rows in ascending ID order so opposing concurrent
	// transfers (A->B while B->A) cannot deadlock.
	first, second := payerID, payeeID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	accounts := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		a, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.ErrStorageFailure(fmt.Errorf("lock account: %w", err))
		}
		if a != nil {
			accounts[id] = a
		}
	}

	payer, ok := accounts[payerID]
	if !ok {
		return nil, apperror.ErrNotFound("Payer account")
	}
	payee, ok := accounts[payeeID]
	if !ok {
		return nil, apperror.ErrPayeeNotFound()
	}
	if !payer.CanPay() {
		return nil, apperror.ErrForbidden()
	}
	if !payee.CanReceive() {
		return nil, apperror.ErrPayeeNotFound()
	}

	// Funds check against the locked row: no concurrent transfer can
	// have read this balance and not yet committed.
	if payer.Balance < amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.accountRepo.Debit(ctx, dbTx, payerID, amount); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("debit payer: %w", err))
	}
	if err := s.accountRepo.Credit(ctx, dbTx, payeeID, amount); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("credit payee: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    amount,
		CreatedAt: now,
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("record transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("payer_id", payerID.String()).
		Str("payee_id", payeeID.String()).
		Int64("amount", amount).
		Msg("transfer committed")

	// Post-commit: notify the payee's live sessions. Delivery problems
	// never affect the committed transfer.
	if s.publisher != nil {
		s.publisher.Publish(payeeID, domain.PaymentEvent{
			TransactionID:    txn.ID,
			Amount:           amount,
			PayerDisplayName: payer.DisplayName,
			OccurredAt:       now,
		})
	}

	return txn, nil
}
