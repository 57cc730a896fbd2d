// Package account implements the application service for single-account
// operations: registration, login, balance mutations and history queries.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	domainaccount "github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/money"
	"github.com/ledgerhub/bankd/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

// maxNumberRetries bounds the re-roll loop when a generated account
// number collides with an existing one. Six digits give a million-slot
// space, so consecutive collisions this deep mean the space is exhausted
// rather than unlucky.
const maxNumberRetries = 5

// Service orchestrates account operations over the persistence ports.
type Service struct {
	uow       repository.UnitOfWork
	logger    *slog.Logger
	hashCost  int
	newNumber func() string
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost, mainly to keep test suites fast.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithNumberGenerator overrides account-number generation, used by tests
// to force collisions.
func WithNumberGenerator(fn func() string) Option {
	return func(s *Service) { s.newNumber = fn }
}

// New creates a Service.
func New(uow repository.UnitOfWork, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		uow:       uow,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
		newNumber: domainaccount.NewNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new account with a zero balance. The email must not
// be registered already; a generated account number that collides with an
// existing one is re-rolled up to maxNumberRetries times. Duplicates are
// enforced by the store's unique indexes at write time, so a
// check-then-insert race still surfaces as domain.ErrDuplicateEmail.
func (s *Service) Create(ctx context.Context, name, email, password string) (*domainaccount.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing credential: %w", err)
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateEmail
	}

	acc := domainaccount.New(name, email, string(hash))
	for attempt := 0; ; attempt++ {
		acc.Number = s.newNumber()
		// Each attempt gets its own transaction. A unique-index violation
		// aborts the surrounding Postgres transaction, so neither the
		// retry insert nor any disambiguating query may share it.
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			return uow.AccountRepository().Create(ctx, acc)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateKey) {
			// The store could not tell which unique index fired; check
			// the email in a fresh transaction.
			taken, checkErr := s.emailTaken(ctx, email)
			if checkErr != nil {
				return nil, checkErr
			}
			if taken {
				return nil, domain.ErrDuplicateEmail
			}
			err = domain.ErrDuplicateNumber
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			return nil, err
		}
		if attempt+1 >= maxNumberRetries {
			return nil, fmt.Errorf("account number space exhausted after %d attempts: %w",
				maxNumberRetries, err)
		}
		s.logger.Warn("account number collision, re-rolling",
			"email", email, "attempt", attempt+1)
	}
	s.logger.Info("account created", "accountID", acc.ID, "number", acc.Number)
	return acc, nil
}

func (s *Service) emailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		taken, err = uow.AccountRepository().ExistsByEmail(ctx, email)
		return err
	})
	return taken, err
}

// Login verifies the credential for the given email. A wrong email and a
// wrong password both fail with domain.ErrInvalidCredentials so callers
// cannot probe which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*domainaccount.Account, error) {
	acc, err := s.uow.AccountRepository().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

// GetByID loads an account by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domainaccount.Account, error) {
	return s.uow.AccountRepository().Get(ctx, id)
}

// GetByEmail loads an account by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domainaccount.Account, error) {
	return s.uow.AccountRepository().GetByEmail(ctx, email)
}

// GetByNumber loads an account by account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*domainaccount.Account, error) {
	return s.uow.AccountRepository().GetByNumber(ctx, number)
}

// Credit deposits amount into the account and records a Completed ledger
// entry. The entry is appended only after the balance change is durable;
// if the append itself fails the balance change stands and the error is
// surfaced (the ledger under-reports until reconciled, a documented gap
// for single-account operations).
func (s *Service) Credit(ctx context.Context, id uuid.UUID, amount money.Money) (*domainaccount.Account, error) {
	acc, err := s.mutate(ctx, id, func(a *domainaccount.Account) error {
		return a.Credit(amount)
	})
	if err != nil {
		return nil, err
	}
	entry, err := ledger.NewDeposit(id, amount)
	if err != nil {
		return nil, err
	}
	if err := s.appendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return acc, nil
}

// Debit withdraws amount from the account and records a Completed ledger
// entry, with the same ordering contract as Credit.
func (s *Service) Debit(ctx context.Context, id uuid.UUID, amount money.Money) (*domainaccount.Account, error) {
	acc, err := s.mutate(ctx, id, func(a *domainaccount.Account) error {
		return a.Debit(amount)
	})
	if err != nil {
		return nil, err
	}
	entry, err := ledger.NewWithdrawal(id, amount)
	if err != nil {
		return nil, err
	}
	if err := s.appendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return acc, nil
}

// Transactions returns the account's ledger history, newest first.
// Fails with domain.ErrNotFound if the account does not exist.
func (s *Service) Transactions(ctx context.Context, id uuid.UUID) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.AccountRepository().Get(ctx, id); err != nil {
			return err
		}
		var err error
		entries, err = uow.LedgerRepository().ListByAccount(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes an account. The zero-balance guard belongs to the
// administrative layer; this service only reports a missing account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.AccountRepository().Delete(ctx, id)
}

// mutate runs one load-modify-save cycle under the optimistic version
// check. A concurrent writer surfaces as domain.ErrConcurrencyConflict;
// retrying the whole cycle is the caller's decision.
func (s *Service) mutate(
	ctx context.Context,
	id uuid.UUID,
	fn func(a *domainaccount.Account) error,
) (*domainaccount.Account, error) {
	var acc *domainaccount.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.AccountRepository()
		var err error
		acc, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err = fn(acc); err != nil {
			return err
		}
		return repo.Save(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Service) appendEntry(ctx context.Context, entry *ledger.Entry) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.LedgerRepository().Append(ctx, entry)
	})
	if err != nil {
		s.logger.Error("ledger append failed after committed balance change",
			"accountID", entry.AccountID, "type", entry.Type, "error", err)
		return err
	}
	return nil
}
