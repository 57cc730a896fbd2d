// Package account provides the gorm-backed account store. Uniqueness of
// email and account number is enforced by database indexes so that a
// check-then-insert race is still caught at write time, and saves apply a
// compare-and-increment on the version column.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	domainaccount "github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates an account repository on the given session. The session
// must be opened with gorm's TranslateError so unique-index violations
// surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) repository.AccountRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*domainaccount.Account, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*domainaccount.Account, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *repo) GetByNumber(ctx context.Context, number string) (*domainaccount.Account, error) {
	return r.getBy(ctx, "number = ?", number)
}

func (r *repo) getBy(ctx context.Context, query string, arg any) (*domainaccount.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("loading account", err)
	}
	return toDomain(&m), nil
}

func (r *repo) List(ctx context.Context) ([]*domainaccount.Account, error) {
	var models []Account
	if err := r.db.WithContext(ctx).Order("number").Find(&models).Error; err != nil {
		return nil, storeErr("listing accounts", err)
	}
	out := make([]*domainaccount.Account, 0, len(models))
	for i := range models {
		out = append(out, toDomain(&models[i]))
	}
	return out, nil
}

func (r *repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Account{}).
		Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, storeErr("checking email", err)
	}
	return count > 0, nil
}

func (r *repo) Create(ctx context.Context, a *domainaccount.Account) error {
	m := toModel(a)
	err := r.db.WithContext(ctx).Create(&m).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Postgres has already aborted the transaction at this point, so
		// asking which unique index fired would only raise 25P02. Report
		// the ambiguous duplicate and let the caller find out in a fresh
		// transaction.
		return domain.ErrDuplicateKey
	}
	return storeErr("creating account", err)
}

func (r *repo) Save(ctx context.Context, a *domainaccount.Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Updates(map[string]any{
			"balance_cents": a.Balance.MinorUnits(),
			"version":       a.Version,
			"updated_at":    a.UpdatedAt,
		})
	if res.Error != nil {
		return storeErr("saving account", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer advanced the version.
		var count int64
		if err := r.db.WithContext(ctx).Model(&Account{}).
			Where("id = ?", a.ID).Count(&count).Error; err != nil {
			return storeErr("saving account", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Account{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("deleting account", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreFailure, op, err)
}
