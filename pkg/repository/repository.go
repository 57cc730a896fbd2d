// Package repository defines the persistence ports consumed by the
// services, plus the unit-of-work boundary that scopes repository access
// to one store session.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
)

// AccountRepository is the persistence port for account aggregates.
//
// Load operations return domain.ErrNotFound for a missing account.
// Create enforces the unique indexes on email (domain.ErrDuplicateEmail)
// and account number (domain.ErrDuplicateNumber) at write time, so a
// check-then-insert race is still detected.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	List(ctx context.Context) ([]*account.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, a *account.Account) error

	// Save persists a mutated aggregate under the optimistic version
	// check: the write succeeds only if the stored version is exactly one
	// behind the aggregate's, i.e. nobody else wrote since it was loaded.
	// A stale version fails with domain.ErrConcurrencyConflict and leaves
	// the stored state untouched.
	Save(ctx context.Context, a *account.Account) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository is the persistence port for ledger entries.
type LedgerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*ledger.Entry, error)

	// ListByAccount returns the entries owned by the account,
	// newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Entry, error)

	Append(ctx context.Context, e *ledger.Entry) error
	Update(ctx context.Context, e *ledger.Entry) error
}

// UnitOfWork scopes repository access to a single store session. Do runs
// fn inside one boundary; implementations backed by a transactional store
// roll the boundary back when fn returns an error.
//
// The transfer saga deliberately runs each of its steps in its own
// boundary: the Pending legs must be durable before any balance moves,
// which a single enclosing transaction would defeat.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
}
