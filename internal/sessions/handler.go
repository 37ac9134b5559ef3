package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorsync/backend/internal/middleware"
	"github.com/tutorsync/backend/internal/models"
	"github.com/tutorsync/backend/pkg/apperr"
	"github.com/tutorsync/backend/pkg/response"
)

// Handler exposes the orchestrator over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a sessions handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the session endpoints on api.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/organizer", h.Organizer)
	api.GET("/events", h.List)
	api.POST("/events", h.Create)
	api.PUT("/events/:id", h.Update)
	api.DELETE("/events/:id", h.Delete)
}

// Organizer handles GET /api/organizer.
func (h *Handler) Organizer(c *gin.Context) {
	org, err := h.svc.OrganizerInfo(c.Request.Context())
	if err != nil {
		h.fail(c, "get organizer", err)
		return
	}
	response.OK(c, org)
}

// List handles GET /api/events.
func (h *Handler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list events", err)
		return
	}
	response.OK(c, events)
}

// Create handles POST /api/events.
func (h *Handler) Create(c *gin.Context) {
	var in models.InsertEvent
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	ev, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create event", err)
		return
	}
	response.Created(c, ev)
}

// Update handles PUT /api/events/:id.
func (h *Handler) Update(c *gin.Context) {
	var in models.InsertEvent
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	ev, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, "update event", err)
		return
	}
	response.OK(c, ev)
}

// Delete handles DELETE /api/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete event", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error(op, zap.Error(err), zap.String("request_id", c.GetString(middleware.ContextRequestID)))
	}
	response.Error(c, err)
}
