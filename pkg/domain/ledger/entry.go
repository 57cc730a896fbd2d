// Package ledger defines the double-entry transaction record and its
// lifecycle. An entry is created Pending (transfer legs) or Completed
// (standalone deposits and withdrawals) and only ever moves forward:
// Pending -> Completed or Pending -> Failed. A Pending entry that never
// reaches a terminal state is the durable signal for reconciliation.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/money"
)

// Type classifies the monetary movement an entry records.
type Type string

// Entry types.
const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeTransfer   Type = "transfer"
)

// Status is the lifecycle state of an entry.
type Status string

// Entry statuses. Completed and Failed are terminal.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Entry is one monetary movement in an account's history.
//
// From/To semantics by type:
//   - deposit:       To = owning account, From = nil
//   - withdrawal:    From = owning account, To = nil
//   - transfer legs: From = source, To = destination; the out leg is owned
//     by the source account, the in leg by the destination.
type Entry struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        money.Money
	Type          Type
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// NewDeposit records a standalone deposit. It is born Completed because
// the account service applies the balance change and the entry in a
// single non-interruptible step.
func NewDeposit(accountID uuid.UUID, amount money.Money) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	id := accountID
	return &Entry{
		ID:          uuid.New(),
		AccountID:   accountID,
		ToAccountID: &id,
		Amount:      amount,
		Type:        TypeDeposit,
		Status:      StatusCompleted,
		CreatedAt:   time.Now(),
	}, nil
}

// NewWithdrawal records a standalone withdrawal, born Completed for the
// same reason as NewDeposit.
func NewWithdrawal(accountID uuid.UUID, amount money.Money) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	id := accountID
	return &Entry{
		ID:            uuid.New(),
		AccountID:     accountID,
		FromAccountID: &id,
		Amount:        amount,
		Type:          TypeWithdrawal,
		Status:        StatusCompleted,
		CreatedAt:     time.Now(),
	}, nil
}

// NewTransferLegs creates the two Pending legs of a transfer: the out leg
// owned by the source account and the in leg owned by the destination.
// Both reference the same from/to pair.
func NewTransferLegs(fromID, toID uuid.UUID, amount money.Money) (out, in *Entry, err error) {
	if fromID == toID {
		return nil, nil, domain.ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}
	from, to := fromID, toID
	now := time.Now()
	out = &Entry{
		ID:            uuid.New(),
		AccountID:     fromID,
		FromAccountID: &from,
		ToAccountID:   &to,
		Amount:        amount,
		Type:          TypeTransfer,
		Status:        StatusPending,
		CreatedAt:     now,
	}
	in = &Entry{
		ID:            uuid.New(),
		AccountID:     toID,
		FromAccountID: &from,
		ToAccountID:   &to,
		Amount:        amount,
		Type:          TypeTransfer,
		Status:        StatusPending,
		CreatedAt:     now,
	}
	return out, in, nil
}

// MarkCompleted moves a Pending entry to Completed. Calling it on an
// entry that already reached a terminal state is an idempotent no-op.
func (e *Entry) MarkCompleted() {
	e.transition(StatusCompleted)
}

// MarkFailed moves a Pending entry to Failed. Calling it on an entry
// that already reached a terminal state is an idempotent no-op.
func (e *Entry) MarkFailed() {
	e.transition(StatusFailed)
}

// Terminal reports whether the entry reached Completed or Failed.
func (e *Entry) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}

func (e *Entry) transition(to Status) {
	if e.Terminal() {
		return
	}
	e.Status = to
	now := time.Now()
	e.UpdatedAt = &now
}
