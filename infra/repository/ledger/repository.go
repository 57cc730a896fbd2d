// Package ledger provides the gorm-backed ledger store.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/domain"
	domainledger "github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New creates a ledger repository on the given session.
func New(db *gorm.DB) repository.LedgerRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*domainledger.Entry, error) {
	var m Entry
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("loading ledger entry", err)
	}
	return toDomain(&m), nil
}

func (r *repo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domainledger.Entry, error) {
	var models []Entry
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, storeErr("listing ledger entries", err)
	}
	out := make([]*domainledger.Entry, 0, len(models))
	for i := range models {
		out = append(out, toDomain(&models[i]))
	}
	return out, nil
}

func (r *repo) Append(ctx context.Context, e *domainledger.Entry) error {
	m := toModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return storeErr("appending ledger entry", err)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, e *domainledger.Entry) error {
	res := r.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"status":     string(e.Status),
			"updated_at": e.UpdatedAt,
		})
	if res.Error != nil {
		return storeErr("updating ledger entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreFailure, op, err)
}
