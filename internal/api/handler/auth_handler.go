package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

type AuthHandler struct {
	auth     ports.AuthService
	accounts ports.AccountRepository
}

func NewAuthHandler(auth ports.AuthService, accounts ports.AccountRepository) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Login authenticates an account and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, account, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, Account: account})
}

// Me returns the authenticated account.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.FindByID(c.Request().Context(), caller.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// ChangePassword rotates the caller's password. The stored one-time
// credential, if any, is cleared by the same write.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204   "password changed"
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.auth.ChangePassword(c.Request().Context(), caller.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
