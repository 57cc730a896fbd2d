package webapi

import (
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ledgerhub/bankd/pkg/config"
	accountservice "github.com/ledgerhub/bankd/pkg/service/account"
)

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginHandler verifies credentials and issues a signed token whose
// subject is the account id. Wrong email and wrong password produce the
// same 401 so the endpoint cannot be used to enumerate accounts.
func LoginHandler(svc *accountservice.Service, cfg config.Jwt) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[LoginRequest](c)
		if req == nil {
			return err
		}
		acc, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return DomainErrorJSON(c, err)
		}

		claims := jwt.MapClaims{
			"sub": acc.ID.String(),
			"exp": time.Now().Add(cfg.Expiry).Unix(),
			"iat": time.Now().Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(cfg.Secret))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "token signing failed", nil)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "login successful", TokenResponse{Token: token})
	}
}

// Protected returns the middleware guarding account and transfer routes.
func Protected(cfg config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "missing or invalid token", nil)
		},
	})
}

// currentAccountID extracts the authenticated account id from the token
// the middleware stored on the context.
func currentAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}
