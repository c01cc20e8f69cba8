package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// OfferingHandler handles offering administration and the public catalog.
type OfferingHandler struct {
	service ports.OfferingService
	blobs   ports.BlobStore
}

func NewOfferingHandler(service ports.OfferingService, blobs ports.BlobStore) *OfferingHandler {
	return &OfferingHandler{service: service, blobs: blobs}
}

type offeringRequest struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Content       string `json:"content"`
	Instructor    string `json:"instructor"`
	DurationHours int    `json:"duration_hours" validate:"omitempty,min=0"`
	Format        string `json:"format" validate:"omitempty,oneof=webinar in_person"`
	Location      string `json:"location"`
	MaxSeats      *int64 `json:"max_seats" validate:"omitempty,min=0"`

	PriceMember    float64 `json:"price_member" validate:"min=0"`
	PriceNonMember float64 `json:"price_non_member" validate:"min=0"`
	PriceYoung     float64 `json:"price_young" validate:"min=0"`
	PriceFree      float64 `json:"price_free" validate:"min=0"`

	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	IsActive bool   `json:"is_active"`
	ImageURL string `json:"image_url"`
}

type updateOfferingRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Content       *string `json:"content"`
	Instructor    *string `json:"instructor"`
	DurationHours *int    `json:"duration_hours" validate:"omitempty,min=0"`
	Format        *string `json:"format" validate:"omitempty,oneof=webinar in_person"`
	Location      *string `json:"location"`
	MaxSeats      *int64  `json:"max_seats" validate:"omitempty,min=0"`
	ClearMaxSeats bool    `json:"clear_max_seats"`

	PriceMember    *float64 `json:"price_member" validate:"omitempty,min=0"`
	PriceNonMember *float64 `json:"price_non_member" validate:"omitempty,min=0"`
	PriceYoung     *float64 `json:"price_young" validate:"omitempty,min=0"`
	PriceFree      *float64 `json:"price_free" validate:"omitempty,min=0"`

	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	IsActive *bool   `json:"is_active"`
	ImageURL *string `json:"image_url"`
}

type offeringViewResponse struct {
	*domain.Offering
	EnrolledCount int64   `json:"enrolled_count"`
	SeatsLeft     *int64  `json:"seats_left"`
	PriceForUser  float64 `json:"price_for_user"`
	IsEnrolled    bool    `json:"is_enrolled"`
}

func toOfferingView(v ports.OfferingView) offeringViewResponse {
	return offeringViewResponse{
		Offering:      v.Offering,
		EnrolledCount: v.EnrolledCount,
		SeatsLeft:     v.SeatsLeft,
		PriceForUser:  v.PriceForCaller,
		IsEnrolled:    v.IsEnrolled,
	}
}

// Create adds an offering to the catalog.
//
// @Summary      Create an offering
// @Tags         offerings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      offeringRequest  true  "Offering details"
// @Success      201   {object}  domain.Offering
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/offerings [post]
func (h *OfferingHandler) Create(c echo.Context) error {
	var req offeringRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	offering, err := h.service.Create(c.Request().Context(), ports.CreateOfferingInput{
		Title:                req.Title,
		Description:          req.Description,
		Content:              req.Content,
		Instructor:           req.Instructor,
		DurationHours:        req.DurationHours,
		Format:               domain.OfferingFormat(req.Format),
		Location:             req.Location,
		MaxSeats:             req.MaxSeats,
		PriceMember:          req.PriceMember,
		PriceNonMember:       req.PriceNonMember,
		PriceYoung:           req.PriceYoung,
		PriceFree:            req.PriceFree,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		IsActive:             req.IsActive,
		ImageURL:             req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, offering)
}

// Update applies a partial edit; omitted fields keep their value.
//
// @Summary      Update an offering
// @Tags         offerings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Offering id"
// @Param        body  body      updateOfferingRequest  true  "Fields to change"
// @Success      200   {object}  domain.Offering
// @Failure      404   {object}  map[string]string
// @Router       /v1/offerings/{id} [put]
func (h *OfferingHandler) Update(c echo.Context) error {
	var req updateOfferingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	update := ports.OfferingUpdate{
		Title:                req.Title,
		Description:          req.Description,
		Content:              req.Content,
		Instructor:           req.Instructor,
		DurationHours:        req.DurationHours,
		Location:             req.Location,
		MaxSeats:             req.MaxSeats,
		ClearMaxSeats:        req.ClearMaxSeats,
		PriceMember:          req.PriceMember,
		PriceNonMember:       req.PriceNonMember,
		PriceYoung:           req.PriceYoung,
		PriceFree:            req.PriceFree,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		IsActive:             req.IsActive,
		ImageURL:             req.ImageURL,
	}
	if req.Format != nil {
		format := domain.OfferingFormat(*req.Format)
		update.Format = &format
	}

	offering, err := h.service.Update(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offering)
}

// Delete removes an offering without enrollments.
//
// @Summary      Delete an offering
// @Tags         offerings
// @Security     BearerAuth
// @Param        id  path  string  true  "Offering id"
// @Success      204  "deleted"
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/offerings/{id} [delete]
func (h *OfferingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage stores an offering image and records its reference.
//
// @Summary      Upload an offering image
// @Tags         offerings
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Offering id"
// @Param        image  formData  file    true  "Image file"
// @Success      200    {object}  domain.Offering
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/offerings/{id}/image [post]
func (h *OfferingHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image file")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
	}
	defer f.Close()

	ref, err := h.blobs.Save(c.Request().Context(), "offerings", fh.Filename, f)
	if err != nil {
		return err
	}

	offering, err := h.service.SetImage(c.Request().Context(), c.Param("id"), ref)
	if err != nil {
		// The offering vanished between upload and update; drop the blob.
		_ = h.blobs.Remove(c.Request().Context(), ref)
		return err
	}
	return c.JSON(http.StatusOK, offering)
}

// List returns the public catalog with computed seats and counts.
//
// @Summary      List offerings
// @Tags         offerings
// @Produce      json
// @Param        format  query     string  false  "Filter by format"  Enums(webinar, in_person)
// @Param        past    query     bool    false  "Show past offerings instead of upcoming"
// @Success      200     {array}   offeringViewResponse
// @Router       /v1/offerings [get]
func (h *OfferingHandler) List(c echo.Context) error {
	filter := ports.ListOfferingsFilter{
		Format: domain.OfferingFormat(c.QueryParam("format")),
		Past:   c.QueryParam("past") == "true",
		Now:    time.Now().UTC(),
	}

	views, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]offeringViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toOfferingView(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one offering with the caller's resolved price.
//
// @Summary      Get an offering
// @Tags         offerings
// @Produce      json
// @Param        id  path      string  true  "Offering id"
// @Success      200  {object}  offeringViewResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/offerings/{id} [get]
func (h *OfferingHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"), ctxCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOfferingView(*view))
}
