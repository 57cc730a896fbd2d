// Package webapi exposes the HTTP surface of the banking service: account
// registration and login, balance and history reads, deposits, withdrawals
// and transfers. All money amounts cross the wire as decimal strings.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ledgerhub/bankd/pkg/config"
	accountservice "github.com/ledgerhub/bankd/pkg/service/account"
	transferservice "github.com/ledgerhub/bankd/pkg/service/transfer"
)

// SetupApp builds the Fiber application and registers all routes.
func SetupApp(
	cfg *config.App,
	accountSvc *accountservice.Service,
	transferSvc *transferservice.Service,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "bankd",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "internal server error", nil)
		},
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/accounts", RegisterHandler(accountSvc))
	app.Post("/login", LoginHandler(accountSvc, cfg.Jwt))

	authed := app.Group("/", Protected(cfg.Jwt))
	authed.Get("/accounts/:id", GetAccountHandler(accountSvc))
	authed.Get("/accounts/:id/balance", BalanceHandler(accountSvc))
	authed.Get("/accounts/:id/transactions", TransactionsHandler(accountSvc))
	authed.Post("/accounts/:id/deposit", DepositHandler(accountSvc))
	authed.Post("/accounts/:id/withdraw", WithdrawHandler(accountSvc))
	authed.Delete("/accounts/:id", DeleteAccountHandler(accountSvc))
	authed.Post("/transfers", TransferHandler(transferSvc))

	return app
}
