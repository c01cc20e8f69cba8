package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/api/metrics"
	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// EnrollmentHandler handles sign-ups, payment confirmation and rosters.
type EnrollmentHandler struct {
	service ports.EnrollmentService
}

func NewEnrollmentHandler(service ports.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

type enrollRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type enrollmentResponse struct {
	*domain.Enrollment
	Offering *domain.Offering `json:"offering,omitempty"`
}

// Enroll signs the caller (or an anonymous visitor) up for an offering.
//
// @Summary      Enroll in an offering
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Offering id"
// @Param        body  body      enrollRequest  true  "Enrollee details"
// @Success      201   {object}  domain.Enrollment
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/offerings/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	var req enrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	caller := ctxCaller(c)
	enrollment, err := h.service.Enroll(c.Request().Context(), ports.EnrollInput{
		OfferingID: c.Param("id"),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Caller:     caller,
	})
	if err != nil {
		return err
	}

	audience := "non_member"
	if enrollment.AccountID != "" {
		audience = "member"
	}
	metrics.EnrollmentsCreatedTotal.WithLabelValues(audience).Inc()
	return c.JSON(http.StatusCreated, enrollment)
}

// ConfirmPayment marks a pending enrollment as paid.
//
// @Summary      Confirm an enrollment payment
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Enrollment id"
// @Success      200  {object}  domain.Enrollment
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/enrollments/{id}/confirm-payment [post]
func (h *EnrollmentHandler) ConfirmPayment(c echo.Context) error {
	enrollment, err := h.service.ConfirmPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enrollment)
}

// Roster returns an offering together with all of its enrollments.
//
// @Summary      Offering roster
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Offering id"
// @Success      200  {object}  ports.OfferingRoster
// @Failure      404  {object}  map[string]string
// @Router       /v1/offerings/{id}/enrollments [get]
func (h *EnrollmentHandler) Roster(c echo.Context) error {
	roster, err := h.service.Roster(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roster)
}

// MyEnrollments lists the caller's enrollments with their offerings.
//
// @Summary      List own enrollments
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   enrollmentResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/enrollments [get]
func (h *EnrollmentHandler) MyEnrollments(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListByAccount(c.Request().Context(), caller.AccountID)
	if err != nil {
		return err
	}

	out := make([]enrollmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, enrollmentResponse{Enrollment: item.Enrollment, Offering: item.Offering})
	}
	return c.JSON(http.StatusOK, out)
}
