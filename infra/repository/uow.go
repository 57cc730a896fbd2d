// Package repository wires the gorm-backed adapters into the
// repository.UnitOfWork contract.
package repository

import (
	"context"

	accountrepo "github.com/ledgerhub/bankd/infra/repository/account"
	ledgerrepo "github.com/ledgerhub/bankd/infra/repository/ledger"
	"github.com/ledgerhub/bankd/pkg/repository"
	"gorm.io/gorm"
)

// UoW scopes repository access to one gorm session. Do opens a database
// transaction and hands the callback a UoW bound to it, so everything
// inside one boundary commits or rolls back together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a UoW over the given *gorm.DB. Outside of Do the
// repositories run on the bare connection.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db, tx: db}
}

// Do runs fn within a database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// AccountRepository returns the account port bound to the current session.
func (u *UoW) AccountRepository() repository.AccountRepository {
	return accountrepo.New(u.tx)
}

// LedgerRepository returns the ledger port bound to the current session.
func (u *UoW) LedgerRepository() repository.LedgerRepository {
	return ledgerrepo.New(u.tx)
}

var _ repository.UnitOfWork = (*UoW)(nil)
