package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ledgerhub/bankd/pkg/money"
	transferservice "github.com/ledgerhub/bankd/pkg/service/transfer"
)

// TransferRequest moves funds from the authenticated account to another
// account identified by its public number. Amount is a decimal string.
type TransferRequest struct {
	ToAccountNumber string `json:"to_account_number" validate:"required,numeric,len=6"`
	Amount          string `json:"amount" validate:"required"`
}

// TransferDTO reports the two ledger legs created by a completed transfer.
type TransferDTO struct {
	OutEntryID string `json:"out_entry_id"`
	InEntryID  string `json:"in_entry_id"`
}

// TransferHandler executes a transfer with the authenticated account as
// the source.
func TransferHandler(svc *transferservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		req, err := BindAndValidate[TransferRequest](c)
		if req == nil {
			return err
		}
		amount, err := money.Parse(req.Amount)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		res, err := svc.Handle(c.UserContext(), from, req.ToAccountNumber, amount)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "transfer completed", TransferDTO{
			OutEntryID: res.OutEntryID.String(),
			InEntryID:  res.InEntryID.String(),
		})
	}
}
