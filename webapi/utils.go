package webapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/ledgerhub/bankd/pkg/domain"
	"github.com/ledgerhub/bankd/pkg/money"
)

var validate = validator.New()

// Response is the standard success envelope.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorResponseJSON writes an RFC 9457 problem response.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Instance: c.OriginalURL(),
	}
	switch d := detail.(type) {
	case string:
		pd.Detail = d
	case nil:
	default:
		pd.Errors = d
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// DomainErrorJSON maps a service error to its problem response.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	return ErrorResponseJSON(c, ErrorToStatusCode(err), err.Error(), nil)
}

// ErrorToStatusCode maps the error taxonomy to HTTP status codes.
// Conflict errors (duplicate email, lost optimistic race) share 409; the
// retryable nature of a concurrency conflict is the client's concern.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, money.ErrMalformed),
		errors.Is(err, money.ErrPrecision),
		errors.Is(err, money.ErrOverflow):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates it.
// On failure the error response has already been written and the returned
// value is nil; handlers must return the error untouched.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}
	if err := validate.Struct(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "validation failed", err.Error())
	}
	return &input, nil
}
