// Package memory provides a map-backed implementation of the persistence
// ports. It is the executable contract of the repository interfaces: the
// service test suites run against it, and it mirrors the semantics of the
// gorm adapters including unique indexes and the optimistic version check.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/repository"
)

// Store holds all state behind one mutex. Accounts and entries are cloned
// on every read and write so callers never share memory with the store,
// matching the load-fresh / private-copy model of a real database.
type Store struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]*account.Account
	byEmail   map[string]uuid.UUID
	byNumber  map[string]uuid.UUID
	entries   map[uuid.UUID]*ledger.Entry
	byAccount map[uuid.UUID][]uuid.UUID // insertion order, oldest first
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]*account.Account),
		byEmail:   make(map[string]uuid.UUID),
		byNumber:  make(map[string]uuid.UUID),
		entries:   make(map[uuid.UUID]*ledger.Entry),
		byAccount: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Do runs fn against the store. There is no rollback: every repository
// call applies immediately, which is exactly the failure model the
// transfer saga is written against.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(s)
}

// AccountRepository returns the account port backed by this store.
func (s *Store) AccountRepository() repository.AccountRepository {
	return (*accountRepo)(s)
}

// LedgerRepository returns the ledger port backed by this store.
func (s *Store) LedgerRepository() repository.LedgerRepository {
	return (*ledgerRepo)(s)
}

var _ repository.UnitOfWork = (*Store)(nil)

type accountRepo Store

func (r *accountRepo) Get(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *accountRepo) GetByNumber(_ context.Context, number string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *accountRepo) List(_ context.Context) ([]*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*account.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *accountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *accountRepo) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[a.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if _, ok := r.byNumber[a.Number]; ok {
		return domain.ErrDuplicateNumber
	}
	if _, ok := r.accounts[a.ID]; ok {
		return domain.ErrConcurrencyConflict
	}
	r.accounts[a.ID] = cloneAccount(a)
	r.byEmail[a.Email] = a.ID
	r.byNumber[a.Number] = a.ID
	return nil
}

// Save applies the compare-and-increment: it succeeds only when the
// stored version is exactly one behind the aggregate's, i.e. the caller
// mutated the version it loaded and nobody wrote in between.
func (r *accountRepo) Save(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.accounts[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != a.Version-1 {
		return domain.ErrConcurrencyConflict
	}
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *accountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byEmail, a.Email)
	delete(r.byNumber, a.Number)
	delete(r.accounts, id)
	return nil
}

type ledgerRepo Store

func (r *ledgerRepo) Get(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneEntry(e), nil
}

func (r *ledgerRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byAccount[accountID]
	out := make([]*ledger.Entry, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- { // newest first
		out = append(out, cloneEntry(r.entries[ids[i]]))
	}
	return out, nil
}

func (r *ledgerRepo) Append(_ context.Context, e *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; ok {
		return domain.ErrConcurrencyConflict
	}
	r.entries[e.ID] = cloneEntry(e)
	r.byAccount[e.AccountID] = append(r.byAccount[e.AccountID], e.ID)
	return nil
}

func (r *ledgerRepo) Update(_ context.Context, e *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.entries[e.ID] = cloneEntry(e)
	return nil
}

func cloneAccount(a *account.Account) *account.Account {
	c := *a
	return &c
}

func cloneEntry(e *ledger.Entry) *ledger.Entry {
	c := *e
	return &c
}
