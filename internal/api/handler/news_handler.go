package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/colmedica/association-api/internal/api/metrics"
	"github.com/colmedica/association-api/internal/core/ports"
)

// NewsHandler handles the public news feed and its editorial workflow.
type NewsHandler struct {
	service ports.NewsService
	blobs   ports.BlobStore
}

func NewNewsHandler(service ports.NewsService, blobs ports.BlobStore) *NewsHandler {
	return &NewsHandler{service: service, blobs: blobs}
}

type createNewsRequest struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Excerpt  string `json:"excerpt" form:"excerpt"`
	Content  string `json:"content" form:"content" validate:"required"`
	Category string `json:"category" form:"category"`
}

type editNewsRequest struct {
	Title    *string `json:"title" form:"title"`
	Excerpt  *string `json:"excerpt" form:"excerpt"`
	Content  *string `json:"content" form:"content"`
	Category *string `json:"category" form:"category"`
	ImageURL *string `json:"image_url" form:"image_url"`
}

type reorderNewsRequest struct {
	Moves []reorderMove `json:"moves" validate:"required,min=1,dive"`
}

type reorderMove struct {
	ID       string `json:"id" validate:"required"`
	NewIndex int    `json:"new_index" validate:"min=0"`
}

// Create accepts a member's news submission, optionally with an image.
// The body may be JSON or multipart form data; the image only arrives
// via the latter.
//
// @Summary      Submit a news item
// @Tags         news
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title     formData  string  true   "Title"
// @Param        content   formData  string  true   "Body text"
// @Param        category  formData  string  false  "Category"
// @Param        image     formData  file    false  "Cover image"
// @Success      201  {object}  domain.NewsItem
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/news [post]
func (h *NewsHandler) Create(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req createNewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var imageRef string
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
		}
		ref, err := h.blobs.Save(c.Request().Context(), "news", fh.Filename, f)
		f.Close()
		if err != nil {
			return err
		}
		imageRef = ref
	}

	item, err := h.service.Create(c.Request().Context(), ports.CreateNewsInput{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
		ImageRef: imageRef,
		AuthorID: caller.AccountID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// ListPublished returns published items, newest pinned order first.
//
// @Summary      List published news
// @Tags         news
// @Produce      json
// @Param        category  query     string  false  "Filter by category"
// @Success      200       {array}   domain.NewsItem
// @Router       /v1/news [get]
func (h *NewsHandler) ListPublished(c echo.Context) error {
	items, err := h.service.ListPublished(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one item. Pending items are only visible to admins.
//
// @Summary      Get a news item
// @Tags         news
// @Produce      json
// @Param        id  path      string  true  "News item id"
// @Success      200  {object}  domain.NewsItem
// @Failure      404  {object}  map[string]string
// @Router       /v1/news/{id} [get]
func (h *NewsHandler) Get(c echo.Context) error {
	item, err := h.service.Get(c.Request().Context(), c.Param("id"), ctxCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// ListAll returns every item regardless of status, for moderation.
//
// @Summary      List all news items
// @Tags         news
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.NewsItem
// @Router       /v1/news/all [get]
func (h *NewsHandler) ListAll(c echo.Context) error {
	items, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Approve publishes a pending item.
//
// @Summary      Approve a news item
// @Tags         news
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "News item id"
// @Success      200  {object}  domain.NewsItem
// @Failure      404  {object}  map[string]string
// @Router       /v1/news/{id}/approve [post]
func (h *NewsHandler) Approve(c echo.Context) error {
	item, err := h.service.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Reject marks an item as rejected.
//
// @Summary      Reject a news item
// @Tags         news
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "News item id"
// @Success      200  {object}  domain.NewsItem
// @Failure      404  {object}  map[string]string
// @Router       /v1/news/{id}/reject [post]
func (h *NewsHandler) Reject(c echo.Context) error {
	item, err := h.service.Reject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Edit applies a partial edit to an item. A multipart "image" file
// replaces the stored image; the superseded blob is removed best-effort.
//
// @Summary      Edit a news item
// @Tags         news
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "News item id"
// @Param        body  body      editNewsRequest  true  "Fields to change"
// @Success      200   {object}  domain.NewsItem
// @Failure      404   {object}  map[string]string
// @Router       /v1/news/{id} [put]
func (h *NewsHandler) Edit(c echo.Context) error {
	var req editNewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	var oldRef string
	if fh, err := c.FormFile("image"); err == nil {
		if prev, err := h.service.Get(c.Request().Context(), c.Param("id"), ctxCaller(c)); err == nil {
			oldRef = prev.ImageURL
		}
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
		}
		ref, err := h.blobs.Save(c.Request().Context(), "news", fh.Filename, f)
		f.Close()
		if err != nil {
			return err
		}
		req.ImageURL = &ref
	}

	item, err := h.service.Edit(c.Request().Context(), c.Param("id"), ports.NewsUpdate{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}

	if oldRef != "" && req.ImageURL != nil && oldRef != *req.ImageURL {
		_ = h.blobs.Remove(c.Request().Context(), oldRef)
	}
	return c.JSON(http.StatusOK, item)
}

// Reorder applies a drag-and-drop batch to the listing order.
//
// @Summary      Reorder news items
// @Tags         news
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  reorderNewsRequest  true  "Reorder moves"
// @Success      204   "reordered"
// @Failure      422   {object}  map[string]string
// @Router       /v1/news/reorder [post]
func (h *NewsHandler) Reorder(c echo.Context) error {
	var req reorderNewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	moves := make([]ports.ReorderMove, 0, len(req.Moves))
	for _, m := range req.Moves {
		moves = append(moves, ports.ReorderMove{ID: m.ID, NewIndex: m.NewIndex})
	}
	if err := h.service.Reorder(c.Request().Context(), moves); err != nil {
		return err
	}
	metrics.NewsReordersTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
