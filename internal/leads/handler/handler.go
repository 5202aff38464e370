package handler

import (
	"net/http"

	"leadcapture_backend/internal/leads/service"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/httpkit"
	"leadcapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for leads and events
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the intake routes. intake throttles
// anonymous submissions.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, intake gin.HandlerFunc) {
	rg.POST("/leads", intake, h.Create)
	rg.GET("/events/current", h.CurrentEvent)
}

// RegisterRoutes registers the staff routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.GET("", h.List)
	leads.POST("/sync-pending", h.BulkResync)
	leads.POST("/sync-pending/enqueue", h.EnqueueBulkResync)
	leads.GET("/:id", h.GetByID)
	leads.PUT("/:id", h.Update)
	leads.DELETE("/:id", h.Delete)
	leads.POST("/:id/resync", h.Resync)
	leads.POST("/:id/appointment-preferences", h.SetAppointmentPreferences)

	events := rg.Group("/events")
	events.GET("", h.ListEvents)
	events.POST("", h.CreateEvent)
	events.POST("/:id/activate", h.ActivateEvent)
}

// Create handles POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// List handles GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Update handles PUT /api/v1/leads/:id. A failed CRM sync is reported in
// the lead's sync status, not as an error response.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

// Resync handles POST /api/v1/leads/:id/resync
func (h *Handler) Resync(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Resync(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if !result.Synced {
		status = http.StatusBadGateway
	}
	httpkit.JSON(c, status, result)
}

// SetAppointmentPreferences handles POST /api/v1/leads/:id/appointment-preferences
func (h *Handler) SetAppointmentPreferences(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.SetAppointmentPreferencesRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.SetAppointmentPreferences(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// BulkResync handles POST /api/v1/leads/sync-pending
func (h *Handler) BulkResync(c *gin.Context) {
	result, err := h.svc.BulkResyncPending(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, bulkStatus(result.Outcome), result)
}

func bulkStatus(outcome transport.BulkOutcome) int {
	switch outcome {
	case transport.BulkOutcomePartial:
		return http.StatusMultiStatus
	case transport.BulkOutcomeFailure:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// EnqueueBulkResync handles POST /api/v1/leads/sync-pending/enqueue
func (h *Handler) EnqueueBulkResync(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.EnqueuePendingResync(c.Request.Context())) {
		return
	}

	httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}

// ListEvents handles GET /api/v1/events
func (h *Handler) ListEvents(c *gin.Context) {
	result, err := h.svc.ListEvents(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// CreateEvent handles POST /api/v1/events
func (h *Handler) CreateEvent(c *gin.Context) {
	var req transport.CreateEventRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.CreateEvent(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// ActivateEvent handles POST /api/v1/events/:id/activate
func (h *Handler) ActivateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.SetActiveEvent(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// CurrentEvent handles GET /api/v1/events/current
func (h *Handler) CurrentEvent(c *gin.Context) {
	result, err := h.svc.CurrentEvent(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
