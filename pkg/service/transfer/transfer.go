// Package transfer implements the two-account money movement as a saga:
// durable Pending ledger legs first, then debit before credit through the
// optimistic-concurrency save path, then both legs marked Completed. Any
// failure after the legs exist compensates by refunding an applied debit
// and marking both legs Failed, so the movement never half-applies.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/money"
	"github.com/ledgerhub/bankd/pkg/repository"
)

// refundRetries bounds the optimistic retries of the compensating refund.
// The refund competes with other writers on the source account, so a few
// conflicts are expected under load.
const refundRetries = 3

// Result pairs the two ledger entry ids produced by one transfer. It is
// the caller's durable evidence of the outcome.
type Result struct {
	OutEntryID uuid.UUID
	InEntryID  uuid.UUID
}

// Service coordinates the saga over the persistence ports.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a transfer Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Handle moves amount from the account identified by fromID to the
// account identified by toNumber.
//
// All validation failures are detected before anything is written. Once
// the two Pending legs are durable, a failure of either balance mutation
// marks both legs Failed (best effort; legs left Pending are the signal
// for reconciliation) and re-raises the original error. Debit strictly
// precedes credit so a failure can never manufacture money.
func (s *Service) Handle(ctx context.Context, fromID uuid.UUID, toNumber string, amount money.Money) (*Result, error) {
	logger := s.logger.With("fromAccountID", fromID, "toNumber", toNumber, "amount", amount)

	from, to, err := s.resolve(ctx, fromID, toNumber)
	if err != nil {
		return nil, err
	}
	if to.ID == from.ID {
		return nil, domain.ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	// Optimistic pre-check only; the debit below is the final authority.
	if from.Balance.Cmp(amount) < 0 {
		return nil, domain.ErrInsufficientFunds
	}

	out, in, err := ledger.NewTransferLegs(from.ID, to.ID, amount)
	if err != nil {
		return nil, err
	}
	if err := s.appendLegs(ctx, out, in); err != nil {
		return nil, fmt.Errorf("recording transfer legs: %w", err)
	}

	if err := s.apply(ctx, from.ID, func(a *account.Account) error { return a.Debit(amount) }); err != nil {
		logger.Warn("transfer debit failed", "error", err)
		s.fail(ctx, out, in)
		return nil, err
	}
	if err := s.apply(ctx, to.ID, func(a *account.Account) error { return a.Credit(amount) }); err != nil {
		logger.Error("transfer credit failed after debit, refunding source", "error", err)
		s.refund(ctx, from.ID, amount)
		s.fail(ctx, out, in)
		return nil, err
	}

	if err := s.complete(ctx, out, in); err != nil {
		// Balances moved but the legs are still Pending: surfaced for
		// reconciliation, never reported as success.
		logger.Error("marking transfer legs completed failed", "error", err)
		return nil, fmt.Errorf("finalizing transfer legs: %w", err)
	}

	logger.Info("transfer completed", "outEntryID", out.ID, "inEntryID", in.ID)
	return &Result{OutEntryID: out.ID, InEntryID: in.ID}, nil
}

// resolve loads both accounts without mutating anything.
func (s *Service) resolve(ctx context.Context, fromID uuid.UUID, toNumber string) (from, to *account.Account, err error) {
	repo := s.uow.AccountRepository()
	if from, err = repo.Get(ctx, fromID); err != nil {
		return nil, nil, err
	}
	if to, err = repo.GetByNumber(ctx, toNumber); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// appendLegs writes both Pending legs in one boundary so an interrupted
// saga leaves zero or two records, never one.
func (s *Service) appendLegs(ctx context.Context, out, in *ledger.Entry) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.LedgerRepository()
		if err := repo.Append(ctx, out); err != nil {
			return err
		}
		return repo.Append(ctx, in)
	})
}

// apply runs one load-mutate-save cycle on a fresh copy of the account,
// the same optimistic path single-account operations use.
func (s *Service) apply(ctx context.Context, id uuid.UUID, fn func(a *account.Account) error) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.AccountRepository()
		acc, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(acc); err != nil {
			return err
		}
		return repo.Save(ctx, acc)
	})
}

// refund puts an already-debited amount back on the source account after
// the credit side failed. It retries a few times on version conflicts;
// if it still fails the Pending/Failed legs carry the evidence for
// reconciliation.
func (s *Service) refund(ctx context.Context, id uuid.UUID, amount money.Money) {
	var err error
	for attempt := 0; attempt < refundRetries; attempt++ {
		err = s.apply(ctx, id, func(a *account.Account) error { return a.Credit(amount) })
		if err == nil {
			return
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
	}
	s.logger.Error("transfer refund failed, source account debited without credit",
		"accountID", id, "amount", amount, "error", err)
}

// fail marks both legs Failed, best effort. Legs it cannot update stay
// Pending, which is the documented reconciliation signal.
func (s *Service) fail(ctx context.Context, out, in *ledger.Entry) {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.LedgerRepository()
		out.MarkFailed()
		if err := repo.Update(ctx, out); err != nil {
			return err
		}
		in.MarkFailed()
		return repo.Update(ctx, in)
	})
	if err != nil {
		s.logger.Error("marking transfer legs failed did not stick",
			"outEntryID", out.ID, "inEntryID", in.ID, "error", err)
	}
}

func (s *Service) complete(ctx context.Context, out, in *ledger.Entry) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.LedgerRepository()
		out.MarkCompleted()
		if err := repo.Update(ctx, out); err != nil {
			return err
		}
		in.MarkCompleted()
		return repo.Update(ctx, in)
	})
}
