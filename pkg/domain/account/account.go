// Package account defines the account aggregate: identity, balance and
// the optimistic-concurrency version token. The balance can only move
// through Credit and Debit, which enforce the non-negativity invariant
// at the point of mutation.
package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/money"
)

// Account is the aggregate root for a single balance.
//
// Invariants:
//   - Balance is never negative.
//   - Version starts at 1 and increases by exactly 1 on every successful
//     mutation; the store layer uses it as the optimistic-concurrency token.
//   - UpdatedAt is nil until the first mutation.
type Account struct {
	ID           uuid.UUID
	Number       string
	Name         string
	Email        string
	PasswordHash string
	Balance      money.Money
	Version      uint64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// New creates a fresh account with a generated id and account number,
// a zero balance and version 1. Uniqueness of email and number is the
// store's concern, not the aggregate's.
func New(name, email, passwordHash string) *Account {
	return &Account{
		ID:           uuid.New(),
		Number:       NewNumber(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Version:      1,
		CreatedAt:    time.Now(),
	}
}

// Builder hydrates an Account from stored data or test fixtures.
// It bypasses the aggregate's mutation path and must only be used where
// the values were validated on the way in.
type Builder struct {
	a Account
}

// NewBuilder starts a builder with a fresh id, zero balance and version 1.
func NewBuilder() *Builder {
	return &Builder{a: Account{
		ID:        uuid.New(),
		Version:   1,
		CreatedAt: time.Now(),
	}}
}

// WithID sets the account id.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.a.ID = id; return b }

// WithNumber sets the account number.
func (b *Builder) WithNumber(n string) *Builder { b.a.Number = n; return b }

// WithName sets the holder name.
func (b *Builder) WithName(n string) *Builder { b.a.Name = n; return b }

// WithEmail sets the holder email.
func (b *Builder) WithEmail(e string) *Builder { b.a.Email = e; return b }

// WithPasswordHash sets the stored credential hash.
func (b *Builder) WithPasswordHash(h string) *Builder { b.a.PasswordHash = h; return b }

// WithBalance sets the balance. Intended for hydration and test setup.
func (b *Builder) WithBalance(m money.Money) *Builder { b.a.Balance = m; return b }

// WithVersion sets the version token.
func (b *Builder) WithVersion(v uint64) *Builder { b.a.Version = v; return b }

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.a.CreatedAt = t; return b }

// WithUpdatedAt sets the last-updated timestamp.
func (b *Builder) WithUpdatedAt(t *time.Time) *Builder { b.a.UpdatedAt = t; return b }

// Build returns the hydrated account.
func (b *Builder) Build() *Account {
	if b.a.Number == "" {
		b.a.Number = NewNumber()
	}
	acc := b.a
	return &acc
}

// Credit adds amount to the balance.
// Fails with domain.ErrInvalidAmount if amount is not strictly positive
// and leaves the aggregate untouched on any failure.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.touch()
	return nil
}

// Debit removes amount from the balance.
// Fails with domain.ErrInvalidAmount if amount is not strictly positive
// and with domain.ErrInsufficientFunds if amount exceeds the balance;
// the aggregate is untouched on any failure.
func (a *Account) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if a.Balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.touch()
	return nil
}

func (a *Account) touch() {
	now := time.Now()
	a.UpdatedAt = &now
	a.Version++
}
