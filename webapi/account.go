package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	domainaccount "github.com/ledgerhub/bankd/pkg/domain/account"
	"github.com/ledgerhub/bankd/pkg/domain/ledger"
	"github.com/ledgerhub/bankd/pkg/money"
	accountservice "github.com/ledgerhub/bankd/pkg/service/account"
)

// RegisterRequest carries the fields needed to open an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AmountRequest carries a decimal amount for deposits and withdrawals.
// Amounts travel as strings so they never pass through binary floats.
type AmountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// AccountDTO is the API representation of an account.
type AccountDTO struct {
	ID        string  `json:"id"`
	Number    string  `json:"number"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Balance   string  `json:"balance"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

// BalanceDTO is the API representation of a balance query.
type BalanceDTO struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// EntryDTO is the API representation of a ledger entry.
type EntryDTO struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"account_id"`
	FromAccountID *string `json:"from_account_id,omitempty"`
	ToAccountID   *string `json:"to_account_id,omitempty"`
	Amount        string  `json:"amount"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

func toAccountDTO(a *domainaccount.Account) AccountDTO {
	dto := AccountDTO{
		ID:        a.ID.String(),
		Number:    a.Number,
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.UpdatedAt != nil {
		s := a.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

func toEntryDTO(e *ledger.Entry) EntryDTO {
	dto := EntryDTO{
		ID:        e.ID.String(),
		AccountID: e.AccountID.String(),
		Amount:    e.Amount.String(),
		Type:      string(e.Type),
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.FromAccountID != nil {
		s := e.FromAccountID.String()
		dto.FromAccountID = &s
	}
	if e.ToAccountID != nil {
		s := e.ToAccountID.String()
		dto.ToAccountID = &s
	}
	if e.UpdatedAt != nil {
		s := e.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

// RegisterHandler opens a new account.
func RegisterHandler(svc *accountservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[RegisterRequest](c)
		if req == nil {
			return err
		}
		acc, err := svc.Create(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "account created", toAccountDTO(acc))
	}
}

// GetAccountHandler returns the authenticated account.
func GetAccountHandler(svc *accountservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		acc, err := svc.GetByID(c.UserContext(), id)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "account", toAccountDTO(acc))
	}
}

// BalanceHandler returns the authenticated account's balance.
func BalanceHandler(svc *accountservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		acc, err := svc.GetByID(c.UserContext(), id)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "balance", BalanceDTO{
			AccountID: acc.ID.String(),
			Balance:   acc.Balance.String(),
		})
	}
}

// TransactionsHandler lists the account's ledger history, newest first.
func TransactionsHandler(svc *accountservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		entries, err := svc.Transactions(c.UserContext(), id)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		dtos := make([]EntryDTO, 0, len(entries))
		for _, e := range entries {
			dtos = append(dtos, toEntryDTO(e))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "transactions", dtos)
	}
}

// DepositHandler credits the authenticated account.
func DepositHandler(svc *accountservice.Service) fiber.Handler {
	return mutationHandler(svc, "deposit successful",
		func(svc *accountservice.Service, c *fiber.Ctx, id uuid.UUID, amount money.Money) (*domainaccount.Account, error) {
			return svc.Credit(c.UserContext(), id, amount)
		})
}

// WithdrawHandler debits the authenticated account.
func WithdrawHandler(svc *accountservice.Service) fiber.Handler {
	return mutationHandler(svc, "withdrawal successful",
		func(svc *accountservice.Service, c *fiber.Ctx, id uuid.UUID, amount money.Money) (*domainaccount.Account, error) {
			return svc.Debit(c.UserContext(), id, amount)
		})
}

// DeleteAccountHandler removes the authenticated account.
func DeleteAccountHandler(svc *accountservice.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "account deleted", nil)
	}
}

func mutationHandler(
	svc *accountservice.Service,
	message string,
	apply func(svc *accountservice.Service, c *fiber.Ctx, id uuid.UUID, amount money.Money) (*domainaccount.Account, error),
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ownAccountID(c)
		if !ok {
			return nil
		}
		req, err := BindAndValidate[AmountRequest](c)
		if req == nil {
			return err
		}
		amount, err := money.Parse(req.Amount)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		acc, err := apply(svc, c, id, amount)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, message, toAccountDTO(acc))
	}
}

// ownAccountID resolves the :id route parameter and requires it to match
// the authenticated account. When it returns false the error response has
// already been written and the handler must stop.
func ownAccountID(c *fiber.Ctx) (uuid.UUID, bool) {
	authID, err := currentAccountID(c)
	if err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusUnauthorized, "missing or invalid token", nil)
		return uuid.Nil, false
	}
	param := c.Params("id")
	if param == "" {
		return authID, true
	}
	id, err := uuid.Parse(param)
	if err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "malformed account id", nil)
		return uuid.Nil, false
	}
	if id != authID {
		_ = ErrorResponseJSON(c, fiber.StatusForbidden, "not your account", nil)
		return uuid.Nil, false
	}
	return id, true
}
