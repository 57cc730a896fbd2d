// Package infra wires concrete infrastructure: the database connection
// and schema migration.
package infra

import (
	"fmt"
	"log/slog"

	accountrepo "github.com/ledgerhub/bankd/infra/repository/account"
	ledgerrepo "github.com/ledgerhub/bankd/infra/repository/ledger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a postgres connection and migrates the schema.
// TranslateError is required so unique-index violations surface as
// gorm.ErrDuplicatedKey to the repositories.
func NewDatabase(url string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&accountrepo.Account{}, &ledgerrepo.Entry{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	log.Info("database ready")
	return db, nil
}
