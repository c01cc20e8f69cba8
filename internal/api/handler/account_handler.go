package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// AccountHandler covers account administration.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type createMemberRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required"`
	Password       string `json:"password" validate:"omitempty,min=8"`
	MembershipType string `json:"membership_type" validate:"omitempty,oneof=normal young free"`
	PaymentStatus  string `json:"payment_status" validate:"omitempty,oneof=paid due"`
}

type createAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateAccountRequest struct {
	Name           *string `json:"name"`
	IsActive       *bool   `json:"is_active"`
	MembershipType *string `json:"membership_type" validate:"omitempty,oneof=normal young free"`
	PaymentStatus  *string `json:"payment_status" validate:"omitempty,oneof=paid due"`
}

type createdAccountResponse struct {
	Account         *domain.Account `json:"account"`
	InitialPassword string          `json:"initial_password,omitempty"`
}

// List returns all accounts, newest first.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Account
// @Router       /v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get returns one account.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  map[string]string
// @Router       /v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update applies a partial edit to an account.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  domain.Account
// @Failure      404   {object}  map[string]string
// @Router       /v1/accounts/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	update := ports.AccountUpdate{Name: req.Name, IsActive: req.IsActive}
	if req.MembershipType != nil {
		tier := domain.MembershipType(*req.MembershipType)
		update.MembershipType = &tier
	}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &status
	}

	account, err := h.service.Update(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// MarkPaid records a membership fee payment.
//
// @Summary      Mark an account as paid
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  map[string]string
// @Router       /v1/accounts/{id}/mark-paid [post]
func (h *AccountHandler) MarkPaid(c echo.Context) error {
	account, err := h.service.MarkPaid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// CreateMember creates a member account directly, bypassing the
// application workflow. The generated password is returned exactly once
// when the request omits one.
//
// @Summary      Create a member account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createMemberRequest  true  "Member details"
// @Success      201   {object}  createdAccountResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/accounts/members [post]
func (h *AccountHandler) CreateMember(c echo.Context) error {
	var req createMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	created, err := h.service.CreateMember(c.Request().Context(), ports.CreateMemberInput{
		Email:          req.Email,
		Name:           req.Name,
		Password:       req.Password,
		MembershipType: domain.MembershipType(req.MembershipType),
		PaymentStatus:  domain.PaymentStatus(req.PaymentStatus),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdAccountResponse{
		Account:         created.Account,
		InitialPassword: created.InitialPassword,
	})
}

// CreateAdmin creates an admin account. Only the configured owner may
// call this; anyone else gets a 403.
//
// @Summary      Create an admin account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAdminRequest  true  "Admin details"
// @Success      201   {object}  createdAccountResponse
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/accounts/admins [post]
func (h *AccountHandler) CreateAdmin(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	created, err := h.service.CreateAdmin(c.Request().Context(), ports.CreateAdminInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		CallerEmail: caller.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdAccountResponse{
		Account:         created.Account,
		InitialPassword: created.InitialPassword,
	})
}
