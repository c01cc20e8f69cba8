package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/api/metrics"
	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// ApplicationHandler handles the membership application workflow.
type ApplicationHandler struct {
	service ports.ApplicationService
	blobs   ports.BlobStore
}

func NewApplicationHandler(service ports.ApplicationService, blobs ports.BlobStore) *ApplicationHandler {
	return &ApplicationHandler{service: service, blobs: blobs}
}

type submitApplicationRequest struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Website         string `json:"website" form:"website"`
	City            string `json:"city" form:"city"`
	Country         string `json:"country" form:"country"`
	Whatsapp        string `json:"whatsapp" form:"whatsapp"`
	Phone           string `json:"phone" form:"phone"`
	Specialization  string `json:"specialization" form:"specialization"`
	University      string `json:"university" form:"university"`
	CurrentHospital string `json:"current_hospital" form:"current_hospital"`
	CurrentPosition string `json:"current_position" form:"current_position"`
	TeachingDegree  string `json:"teaching_degree" form:"teaching_degree"`
	Motivation      string `json:"motivation" form:"motivation"`
	ExperienceYears int    `json:"experience_years" form:"experience_years"`
}

type decideApplicationRequest struct {
	MembershipType string `json:"membership_type" validate:"omitempty,oneof=normal young free"`
	Note           string `json:"note"`
}

type confirmApplicationResponse struct {
	Application *domain.Application     `json:"application"`
	Credentials ports.IssuedCredentials `json:"credentials"`
}

// Submit handles the public application form. Accepts JSON or multipart;
// multipart submissions may attach up to documentLimit files under the
// "documents" field.
//
// @Summary      Submit a membership application
// @Tags         applications
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body  body      submitApplicationRequest  true  "Application details"
// @Success      201   {object}  domain.Application
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	refs, err := h.saveDocuments(c)
	if err != nil {
		return err
	}

	app, err := h.service.Submit(c.Request().Context(), ports.SubmitApplicationInput{
		Name:            req.Name,
		Email:           req.Email,
		Website:         req.Website,
		City:            req.City,
		Country:         req.Country,
		Whatsapp:        req.Whatsapp,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		University:      req.University,
		CurrentHospital: req.CurrentHospital,
		CurrentPosition: req.CurrentPosition,
		TeachingDegree:  req.TeachingDegree,
		Motivation:      req.Motivation,
		ExperienceYears: req.ExperienceYears,
		DocumentRefs:    refs,
	})
	if err != nil {
		return err
	}

	metrics.ApplicationsSubmittedTotal.Inc()
	return c.JSON(http.StatusCreated, app)
}

const documentLimit = 5

func (h *ApplicationHandler) saveDocuments(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// JSON submission, no attachments.
		return nil, nil
	}

	files := form.File["documents"]
	if len(files) > documentLimit {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "too many documents")
	}

	var refs []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable document upload")
		}
		ref, err := h.blobs.Save(c.Request().Context(), "applications", fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// List returns all applications, newest first.
//
// @Summary      List membership applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Application
// @Failure      403  {object}  map[string]string
// @Router       /v1/applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	apps, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apps)
}

// Get returns one application.
//
// @Summary      Get a membership application
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application id"
// @Success      200  {object}  domain.Application
// @Failure      404  {object}  map[string]string
// @Router       /v1/applications/{id} [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	app, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// Approve moves a pending application to payment_pending.
//
// @Summary      Approve an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true   "Application id"
// @Param        body  body      decideApplicationRequest  false  "Chosen membership type and note"
// @Success      200   {object}  domain.Application
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c echo.Context) error {
	var req decideApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	app, err := h.service.Approve(c.Request().Context(), ports.ApproveApplicationInput{
		ApplicationID:  c.Param("id"),
		MembershipType: domain.MembershipType(req.MembershipType),
		Note:           req.Note,
	})
	if err != nil {
		return err
	}

	metrics.ApplicationsDecidedTotal.WithLabelValues("approved").Inc()
	return c.JSON(http.StatusOK, app)
}

// Reject moves a pending application to its terminal rejected state.
//
// @Summary      Reject an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true   "Application id"
// @Param        body  body      decideApplicationRequest  false  "Rejection note"
// @Success      200   {object}  domain.Application
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c echo.Context) error {
	var req decideApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	app, err := h.service.Reject(c.Request().Context(), c.Param("id"), req.Note)
	if err != nil {
		return err
	}

	metrics.ApplicationsDecidedTotal.WithLabelValues("rejected").Inc()
	return c.JSON(http.StatusOK, app)
}

// ConfirmPayment reconciles the membership fee and mints the account.
// The response carries the one-time credential exactly once.
//
// @Summary      Confirm an application's membership payment
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application id"
// @Success      200  {object}  confirmApplicationResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/applications/{id}/confirm-payment [post]
func (h *ApplicationHandler) ConfirmPayment(c echo.Context) error {
	result, err := h.service.ConfirmPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.ApplicationsDecidedTotal.WithLabelValues("paid").Inc()
	return c.JSON(http.StatusOK, confirmApplicationResponse{
		Application: result.Application,
		Credentials: result.Credentials,
	})
}
