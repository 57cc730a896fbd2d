package account

import (
	"time"

	"github.com/google/uuid"
	domainaccount "github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/money"
)

// Account is the database record for an account aggregate. The balance is
// stored as minor units and the version column carries the optimistic
// concurrency token; updated_at is owned by the aggregate, not by gorm.
type Account struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number       string     `gorm:"type:varchar(6);uniqueIndex;not null"`
	Name         string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	BalanceCents int64      `gorm:"not null;default:0"`
	Version      uint64     `gorm:"not null;default:1"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func toModel(a *domainaccount.Account) Account {
	return Account{
		ID:           a.ID,
		Number:       a.Number,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		BalanceCents: a.Balance.MinorUnits(),
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toDomain(m *Account) *domainaccount.Account {
	return domainaccount.NewBuilder().
		WithID(m.ID).
		WithNumber(m.Number).
		WithName(m.Name).
		WithEmail(m.Email).
		WithPasswordHash(m.PasswordHash).
		WithBalance(money.FromMinorUnits(m.BalanceCents)).
		WithVersion(m.Version).
		WithCreatedAt(m.CreatedAt).
		WithUpdatedAt(m.UpdatedAt).
		Build()
}
