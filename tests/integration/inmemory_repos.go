package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore backs the in-memory repos. Writes inside a transaction are
// staged on the memTx and only applied at Commit, so a rolled-back
// transfer leaves no trace, matching the real storage semantics.
type memStore struct {
	txMu   sync.Mutex // serializes transactions, standing in for row locks
	dataMu sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	ledger   []*domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (s *memStore) balance(id uuid.UUID) int64 {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	if a, ok := s.accounts[id]; ok {
		return a.Balance
	}
	return 0
}

func (s *memStore) ledgerSize() int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return len(s.ledger)
}

// --- In-memory transactor ---

type memTransactor struct {
	store *memStore
}

func newMemTransactor(store *memStore) *memTransactor {
	return &memTransactor{store: store}
}

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &memTx{store: t.store}, nil
}

// memTx is a pgx.Tx that stages writes and applies them on Commit.
// Holding the store's txMu for the transaction's lifetime gives the
// same serialization the row locks give in PostgreSQL.
type memTx struct {
	store   *memStore
	pending []func()
	release sync.Once
}

func (t *memTx) stage(fn func()) {
	t.pending = append(t.pending, fn)
}

func (t *memTx) Commit(ctx context.Context) error {
	t.release.Do(func() {
		t.store.dataMu.Lock()
		for _, fn := range t.pending {
			fn()
		}
		t.store.dataMu.Unlock()
		t.store.txMu.Unlock()
	})
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.release.Do(func() {
		t.pending = nil
		t.store.txMu.Unlock()
	})
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }

// --- In-memory account repo ---

type memAccountRepo struct {
	store *memStore
}

func newMemAccountRepo(store *memStore) *memAccountRepo {
	return &memAccountRepo{store: store}
}

func (r *memAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	for _, existing := range r.store.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *account
	r.store.accounts[account.ID] = &cp
	return nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	for _, a := range r.store.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	// The caller holds the transactor's lock; a plain read is consistent.
	return r.GetByID(ctx, id)
}

func (r *memAccountRepo) Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error {
	mt, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("debit outside transaction")
	}
	mt.stage(func() {
		if a, ok := r.store.accounts[id]; ok {
			a.Balance -= amount
			a.UpdatedAt = time.Now().UTC()
		}
	})
	return nil
}

func (r *memAccountRepo) Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error {
	mt, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("credit outside transaction")
	}
	mt.stage(func() {
		if a, ok := r.store.accounts[id]; ok {
			a.Balance += amount
			a.UpdatedAt = time.Now().UTC()
		}
	})
	return nil
}

// --- In-memory transaction repo ---

type memTransactionRepo struct {
	store *memStore

	mu        sync.Mutex
	createErr error // injected failure for atomicity tests
}

func newMemTransactionRepo(store *memStore) *memTransactionRepo {
	return &memTransactionRepo{store: store}
}

func (r *memTransactionRepo) failNextCreate(err error) {
	r.mu.Lock()
	r.createErr = err
	r.mu.Unlock()
}

func (r *memTransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	r.mu.Lock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	mt, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("ledger write outside transaction")
	}
	cp := *txn
	mt.stage(func() {
		r.store.ledger = append(r.store.ledger, &cp)
	})
	return nil
}

func (r *memTransactionRepo) ListByPayee(ctx context.Context, payeeID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()

	var entries []domain.LedgerEntry
	for _, t := range r.store.ledger {
		if t.PayeeID != payeeID {
			continue
		}
		entry := domain.LedgerEntry{Transaction: *t}
		if payer, ok := r.store.accounts[t.PayerID]; ok {
			entry.PayerDisplayName = payer.DisplayName
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
