package service

import (
	"context"
	"fmt"
	"time"

	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProvisionServiceImpl implements ports.ProvisionService. Account
// creation happens out-of-band of the transfer core; it is the only
// path besides the transfer engine that writes the accounts table.
type ProvisionServiceImpl struct {
	accountRepo    ports.AccountRepository
	hashSvc        ports.HashService
	initialBalance int64 // Seed balance for new consumer accounts
	log            zerolog.Logger
}

// NewProvisionService creates a new ProvisionServiceImpl.
func NewProvisionService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	initialBalance int64,
	log zerolog.Logger,
) *ProvisionServiceImpl {
	return &ProvisionServiceImpl{
		accountRepo:    accountRepo,
		hashSvc:        hashSvc,
		initialBalance: initialBalance,
		log:            log,
	}
}

// CreateAccount provisions a new account. Consumers start with the
// configured seed balance; merchants and admins start at zero.
func (s *ProvisionServiceImpl) CreateAccount(ctx context.Context, req ports.ProvisionRequest) (*domain.Account, error) {
	if !req.Role.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	existing, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	var balance int64
	if req.Role == domain.RoleConsumer {
		balance = s.initialBalance
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		DisplayName:  req.DisplayName,
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("role", string(account.Role)).
		Int64("balance", account.Balance).
		Msg("account provisioned")

	return account, nil
}
