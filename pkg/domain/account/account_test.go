package account_test

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func mustParse(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()
	acc := account.New("Ada Lovelace", "ada@example.com", "hash")

	assert.NotEqual(t, "", acc.ID.String())
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), acc.Number)
	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, uint64(1), acc.Version)
	assert.Nil(t, acc.UpdatedAt)
	assert.False(t, acc.CreatedAt.IsZero())
}

func TestCredit(t *testing.T) {
	t.Parallel()
	acc := account.New("Ada", "ada@example.com", "hash")

	require.NoError(t, acc.Credit(mustParse(t, "100.00")))
	assert.Equal(t, "100.00", acc.Balance.String())
	assert.Equal(t, uint64(2), acc.Version)
	assert.NotNil(t, acc.UpdatedAt)

	t.Run("zero amount rejected", func(t *testing.T) {
		err := acc.Credit(money.Money{})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, "100.00", acc.Balance.String())
		assert.Equal(t, uint64(2), acc.Version)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		err := acc.Credit(money.FromMinorUnits(-100))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, "100.00", acc.Balance.String())
	})
}

func TestDebit(t *testing.T) {
	t.Parallel()
	acc := account.NewBuilder().
		WithEmail("ada@example.com").
		WithBalance(mustParse(t, "100.00")).
		Build()

	require.NoError(t, acc.Debit(mustParse(t, "30.00")))
	assert.Equal(t, "70.00", acc.Balance.String())
	assert.Equal(t, uint64(2), acc.Version)

	t.Run("insufficient funds", func(t *testing.T) {
		err := acc.Debit(mustParse(t, "70.01"))
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, "70.00", acc.Balance.String())
		assert.Equal(t, uint64(2), acc.Version)
	})

	t.Run("exact balance allowed", func(t *testing.T) {
		require.NoError(t, acc.Debit(mustParse(t, "70.00")))
		assert.True(t, acc.Balance.IsZero())
		assert.Equal(t, uint64(3), acc.Version)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		err := acc.Debit(money.Money{})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, uint64(3), acc.Version)
	})
}

// A sequence of credits and debits must always equal credits minus debits,
// never dipping below zero along the way.
func TestMutationSequence(t *testing.T) {
	t.Parallel()
	acc := account.New("Ada", "ada@example.com", "hash")

	steps := []struct {
		credit bool
		amount string
		want   string
	}{
		{true, "100.00", "100.00"},
		{false, "30.00", "70.00"},
		{true, "0.05", "70.05"},
		{false, "70.05", "0.00"},
		{true, "15.00", "15.00"},
	}
	for i, s := range steps {
		var err error
		if s.credit {
			err = acc.Credit(mustParse(t, s.amount))
		} else {
			err = acc.Debit(mustParse(t, s.amount))
		}
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.want, acc.Balance.String(), "step %d", i)
		assert.False(t, acc.Balance.IsNegative(), "step %d", i)
	}
	assert.Equal(t, uint64(1+len(steps)), acc.Version)
}

func TestNewNumber(t *testing.T) {
	t.Parallel()
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 64; i++ {
		assert.Regexp(t, pattern, account.NewNumber())
	}
}

func TestBuilderHydration(t *testing.T) {
	t.Parallel()
	src := account.New("Ada", "ada@example.com", "hash")
	require.NoError(t, src.Credit(mustParse(t, "5.00")))

	got := account.NewBuilder().
		WithID(src.ID).
		WithNumber(src.Number).
		WithName(src.Name).
		WithEmail(src.Email).
		WithPasswordHash(src.PasswordHash).
		WithBalance(src.Balance).
		WithVersion(src.Version).
		WithCreatedAt(src.CreatedAt).
		WithUpdatedAt(src.UpdatedAt).
		Build()

	assert.Equal(t, src, got)
}
