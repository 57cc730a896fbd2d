package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ledgerhub/bankd/infra"
	infrarepo "github.com/ledgerhub/bankd/infra/repository"
	"github.com/ledgerhub/bankd/pkg/config"
	accountservice "github.com/ledgerhub/bankd/pkg/service/account"
	transferservice "github.com/ledgerhub/bankd/pkg/service/transfer"
	"github.com/ledgerhub/bankd/webapi"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := infra.NewDatabase(cfg.DB.Url, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	uow := infrarepo.NewUoW(db)
	accountSvc := accountservice.New(uow, logger)
	transferSvc := transferservice.New(uow, logger)

	app := webapi.SetupApp(cfg, accountSvc, transferSvc)
	logger.Info("starting server", "env", cfg.Env, "addr", cfg.Server.Addr)
	return app.Listen(cfg.Server.Addr)
}
