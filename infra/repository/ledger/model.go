package ledger

import (
	"time"

	"github.com/google/uuid"
	domainledger "github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/money"
)

// Entry is the database record for a ledger entry. Entries are append-only
// except for the status/updated_at pair, which moves forward once.
type Entry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	FromAccountID *uuid.UUID `gorm:"type:uuid"`
	ToAccountID   *uuid.UUID `gorm:"type:uuid"`
	AmountCents   int64      `gorm:"not null"`
	Type          string     `gorm:"type:varchar(16);not null"`
	Status        string     `gorm:"type:varchar(16);not null"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for the Entry model.
func (Entry) TableName() string {
	return "ledger_entries"
}

func toModel(e *domainledger.Entry) Entry {
	return Entry{
		ID:            e.ID,
		AccountID:     e.AccountID,
		FromAccountID: e.FromAccountID,
		ToAccountID:   e.ToAccountID,
		AmountCents:   e.Amount.MinorUnits(),
		Type:          string(e.Type),
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toDomain(m *Entry) *domainledger.Entry {
	return &domainledger.Entry{
		ID:            m.ID,
		AccountID:     m.AccountID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        money.FromMinorUnits(m.AmountCents),
		Type:          domainledger.Type(m.Type),
		Status:        domainledger.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
