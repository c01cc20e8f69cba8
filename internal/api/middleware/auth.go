package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// AccountLoader resolves the authenticated account behind a token subject.
type AccountLoader interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// Auth validates the JWT, loads the account it names, and injects a
// *ports.Caller snapshot into context. Requests without a valid token for
// an active account are rejected.
func Auth(jwtSecret string, accounts AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := resolveCaller(c, jwtSecret, accounts)
			if err != nil {
				return err
			}
			c.Set("caller", caller)
			return next(c)
		}
	}
}

// OptionalAuth injects a *ports.Caller when a valid token is present and
// lets the request through anonymously otherwise. Public endpoints that
// personalize for logged-in members (offering detail, enrollment) use it.
func OptionalAuth(jwtSecret string, accounts AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if caller, err := resolveCaller(c, jwtSecret, accounts); err == nil {
				c.Set("caller", caller)
			}
			return next(c)
		}
	}
}

func resolveCaller(c echo.Context, jwtSecret string, accounts AccountLoader) (*ports.Caller, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}

	// The snapshot is loaded fresh per request so role, tier, and payment
	// standing changes apply without waiting for token expiry.
	account, err := accounts.FindByID(c.Request().Context(), sub)
	if err != nil || !account.IsActive {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "account not available")
	}

	return &ports.Caller{
		AccountID:      account.ID,
		Email:          account.Email,
		Role:           account.Role,
		MembershipType: account.MembershipType,
		IsActive:       account.IsActive,
		PaymentStatus:  account.PaymentStatus,
	}, nil
}
