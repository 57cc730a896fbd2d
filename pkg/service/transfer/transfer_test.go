package transfer_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/infra/repository/memory"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/money"
	"github.com/ledgerhub/bankd/pkg/repository"
	"github.com/ledgerhub/bankd/pkg/service/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func amount(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

// seed creates an account with the given balance directly in the store.
func seed(t *testing.T, store *memory.Store, email, balance string) *account.Account {
	t.Helper()
	acc := account.NewBuilder().
		WithName("holder " + email).
		WithEmail(email).
		WithPasswordHash("hash").
		WithBalance(amount(t, balance)).
		Build()
	require.NoError(t, store.AccountRepository().Create(context.Background(), acc))
	return acc
}

func balanceOf(t *testing.T, store *memory.Store, id uuid.UUID) string {
	t.Helper()
	acc, err := store.AccountRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.String()
}

func entriesOf(t *testing.T, store *memory.Store, id uuid.UUID) []*ledger.Entry {
	t.Helper()
	entries, err := store.LedgerRepository().ListByAccount(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func TestHandle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc := transfer.New(store, slog.Default())

	from := seed(t, store, "from@example.com", "70.00")
	to := seed(t, store, "to@example.com", "10.00")

	res, err := svc.Handle(ctx, from.ID, to.Number, amount(t, "70.00"))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "0.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "80.00", balanceOf(t, store, to.ID))

	outEntries := entriesOf(t, store, from.ID)
	inEntries := entriesOf(t, store, to.ID)
	require.Len(t, outEntries, 1)
	require.Len(t, inEntries, 1)

	out, in := outEntries[0], inEntries[0]
	assert.Equal(t, res.OutEntryID, out.ID)
	assert.Equal(t, res.InEntryID, in.ID)
	for _, leg := range []*ledger.Entry{out, in} {
		assert.Equal(t, ledger.TypeTransfer, leg.Type)
		assert.Equal(t, ledger.StatusCompleted, leg.Status)
		assert.Equal(t, "70.00", leg.Amount.String())
		require.NotNil(t, leg.FromAccountID)
		require.NotNil(t, leg.ToAccountID)
		assert.Equal(t, from.ID, *leg.FromAccountID)
		assert.Equal(t, to.ID, *leg.ToAccountID)
	}
}

func TestHandleValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc := transfer.New(store, slog.Default())

	from := seed(t, store, "from@example.com", "50.00")
	to := seed(t, store, "to@example.com", "0.00")

	tests := []struct {
		name   string
		fromID uuid.UUID
		toNum  string
		amount money.Money
		err    error
	}{
		{"unknown source", uuid.New(), to.Number, amount(t, "1.00"), domain.ErrNotFound},
		{"unknown destination", from.ID, "000000", amount(t, "1.00"), domain.ErrNotFound},
		{"same account", from.ID, from.Number, amount(t, "1.00"), domain.ErrSameAccount},
		{"zero amount", from.ID, to.Number, money.Money{}, domain.ErrInvalidAmount},
		{"negative amount", from.ID, to.Number, money.FromMinorUnits(-100), domain.ErrInvalidAmount},
		{"insufficient funds", from.ID, to.Number, amount(t, "100.00"), domain.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Handle(ctx, tt.fromID, tt.toNum, tt.amount)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	// No validation failure may leave any trace behind.
	assert.Equal(t, "50.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "0.00", balanceOf(t, store, to.ID))
	assert.Empty(t, entriesOf(t, store, from.ID))
	assert.Empty(t, entriesOf(t, store, to.ID))
}

// failSaveUow wraps the memory store and fails account saves for one id,
// simulating a store failure or a lost optimistic race mid-saga.
type failSaveUow struct {
	inner   *memory.Store
	failFor uuid.UUID
	err     error
}

func (f *failSaveUow) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(f)
}

func (f *failSaveUow) AccountRepository() repository.AccountRepository {
	return &failSaveRepo{
		AccountRepository: f.inner.AccountRepository(),
		failFor:           f.failFor,
		err:               f.err,
	}
}

func (f *failSaveUow) LedgerRepository() repository.LedgerRepository {
	return f.inner.LedgerRepository()
}

type failSaveRepo struct {
	repository.AccountRepository
	failFor uuid.UUID
	err     error
}

func (r *failSaveRepo) Save(ctx context.Context, a *account.Account) error {
	if a.ID == r.failFor {
		return r.err
	}
	return r.AccountRepository.Save(ctx, a)
}

func TestHandleDebitFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()

	from := seed(t, store, "from@example.com", "50.00")
	to := seed(t, store, "to@example.com", "10.00")

	uow := &failSaveUow{inner: store, failFor: from.ID, err: domain.ErrConcurrencyConflict}
	svc := transfer.New(uow, slog.Default())

	_, err := svc.Handle(ctx, from.ID, to.Number, amount(t, "20.00"))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// Balances untouched, both legs Failed.
	assert.Equal(t, "50.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "10.00", balanceOf(t, store, to.ID))

	outEntries := entriesOf(t, store, from.ID)
	inEntries := entriesOf(t, store, to.ID)
	require.Len(t, outEntries, 1)
	require.Len(t, inEntries, 1)
	assert.Equal(t, ledger.StatusFailed, outEntries[0].Status)
	assert.Equal(t, ledger.StatusFailed, inEntries[0].Status)
}

func TestHandleCreditFailureRefundsDebit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()

	from := seed(t, store, "from@example.com", "50.00")
	to := seed(t, store, "to@example.com", "10.00")

	uow := &failSaveUow{inner: store, failFor: to.ID, err: domain.ErrStoreFailure}
	svc := transfer.New(uow, slog.Default())

	_, err := svc.Handle(ctx, from.ID, to.Number, amount(t, "20.00"))
	assert.ErrorIs(t, err, domain.ErrStoreFailure)

	// The applied debit was compensated; nobody keeps or loses money.
	assert.Equal(t, "50.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "10.00", balanceOf(t, store, to.ID))

	outEntries := entriesOf(t, store, from.ID)
	inEntries := entriesOf(t, store, to.ID)
	require.Len(t, outEntries, 1)
	require.Len(t, inEntries, 1)
	assert.Equal(t, ledger.StatusFailed, outEntries[0].Status)
	assert.Equal(t, ledger.StatusFailed, inEntries[0].Status)
}

// failUpdateUow fails ledger updates, so legs can be written but never
// finalized.
type failUpdateUow struct {
	inner *memory.Store
	err   error
}

func (f *failUpdateUow) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(f)
}

func (f *failUpdateUow) AccountRepository() repository.AccountRepository {
	return f.inner.AccountRepository()
}

func (f *failUpdateUow) LedgerRepository() repository.LedgerRepository {
	return &failUpdateRepo{LedgerRepository: f.inner.LedgerRepository(), err: f.err}
}

type failUpdateRepo struct {
	repository.LedgerRepository
	err error
}

func (r *failUpdateRepo) Update(ctx context.Context, e *ledger.Entry) error {
	return r.err
}

func TestHandleNeverReportsSuccessWithPendingLegs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()

	from := seed(t, store, "from@example.com", "50.00")
	to := seed(t, store, "to@example.com", "10.00")

	uow := &failUpdateUow{inner: store, err: domain.ErrStoreFailure}
	svc := transfer.New(uow, slog.Default())

	res, err := svc.Handle(ctx, from.ID, to.Number, amount(t, "20.00"))
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.Nil(t, res)

	// Money moved but the legs stayed Pending: the documented signal for
	// reconciliation, surfaced as an error instead of a success.
	assert.Equal(t, "30.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "30.00", balanceOf(t, store, to.ID))
	outEntries := entriesOf(t, store, from.ID)
	require.Len(t, outEntries, 1)
	assert.Equal(t, ledger.StatusPending, outEntries[0].Status)
}

// drainOnAppendUow drains the source account through the normal
// optimistic path the moment the saga appends its first leg, i.e. after
// the stale-tolerant pre-check but before the authoritative debit.
type drainOnAppendUow struct {
	inner   *memory.Store
	t       *testing.T
	drainID uuid.UUID
	drainBy money.Money
	drained bool
}

func (d *drainOnAppendUow) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(d)
}

func (d *drainOnAppendUow) AccountRepository() repository.AccountRepository {
	return d.inner.AccountRepository()
}

func (d *drainOnAppendUow) LedgerRepository() repository.LedgerRepository {
	return &drainOnAppendRepo{LedgerRepository: d.inner.LedgerRepository(), uow: d}
}

type drainOnAppendRepo struct {
	repository.LedgerRepository
	uow *drainOnAppendUow
}

func (r *drainOnAppendRepo) Append(ctx context.Context, e *ledger.Entry) error {
	d := r.uow
	if !d.drained {
		d.drained = true
		repo := d.inner.AccountRepository()
		acc, err := repo.Get(ctx, d.drainID)
		require.NoError(d.t, err)
		require.NoError(d.t, acc.Debit(d.drainBy))
		require.NoError(d.t, repo.Save(ctx, acc))
	}
	return r.LedgerRepository.Append(ctx, e)
}

func TestHandleInsufficientFundsAtDebitTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()

	from := seed(t, store, "from@example.com", "50.00")
	to := seed(t, store, "to@example.com", "0.00")

	uow := &drainOnAppendUow{
		inner:   store,
		t:       t,
		drainID: from.ID,
		drainBy: amount(t, "45.00"),
	}
	svc := transfer.New(uow, slog.Default())

	// The pre-check sees 50.00 and passes; the debit reloads fresh state,
	// finds 5.00 and is the final authority.
	_, err := svc.Handle(ctx, from.ID, to.Number, amount(t, "20.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, "5.00", balanceOf(t, store, from.ID))
	assert.Equal(t, "0.00", balanceOf(t, store, to.ID))

	outEntries := entriesOf(t, store, from.ID)
	inEntries := entriesOf(t, store, to.ID)
	require.Len(t, outEntries, 1)
	require.Len(t, inEntries, 1)
	assert.Equal(t, ledger.StatusFailed, outEntries[0].Status)
	assert.Equal(t, ledger.StatusFailed, inEntries[0].Status)
}
