package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/core/ports"
)

// ctxCaller extracts the caller snapshot injected by the Auth middleware.
// Nil on anonymous requests (no token, or OptionalAuth fell through).
func ctxCaller(c echo.Context) *ports.Caller {
	caller, _ := c.Get("caller").(*ports.Caller)
	return caller
}

// requireCaller fast-fails when no caller is present. Presence proves the
// Auth middleware ran; on routes behind Auth a miss means a wiring bug,
// surfaced as 401 rather than a nil dereference.
func requireCaller(c echo.Context) (*ports.Caller, error) {
	caller := ctxCaller(c)
	if caller == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return caller, nil
}
