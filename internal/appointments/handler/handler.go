package handler

import (
	"net/http"
	"strings"

	"leadcapture_backend/internal/appointments/service"
	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/platform/httpkit"
	"leadcapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for appointments
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new appointments handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the availability routes the intake form uses.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/schedule", h.GetSchedule)
	rg.GET("/availability", h.CheckAvailability)
	rg.GET("/availability/next", h.FindNextAvailable)
	rg.GET("/availability/:date", h.AvailabilityForDate)
}

// RegisterRoutes registers the staff appointment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/stats", h.GetStats)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/cancel", h.Cancel)
}

// GetSchedule handles GET /api/v1/appointments/schedule
func (h *Handler) GetSchedule(c *gin.Context) {
	httpkit.OK(c, h.svc.Schedule())
}

// CheckAvailability handles GET /api/v1/appointments/availability
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req transport.AvailabilityQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.CheckAvailability(c.Request.Context(), req.Start, req.End, splitSlots(req.Slots))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// FindNextAvailable handles GET /api/v1/appointments/availability/next
func (h *Handler) FindNextAvailable(c *gin.Context) {
	var req transport.NextAvailableQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.FindNextAvailable(c.Request.Context(), req.From, splitSlots(req.Slots), req.MaxDays)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// AvailabilityForDate handles GET /api/v1/appointments/availability/:date
func (h *Handler) AvailabilityForDate(c *gin.Context) {
	result, err := h.svc.AvailabilityForDate(c.Request.Context(), c.Param("date"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// List handles GET /api/v1/appointments
func (h *Handler) List(c *gin.Context) {
	var req transport.ListAppointmentsRequest
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

// Create handles POST /api/v1/appointments
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAppointmentRequest
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

// GetStats handles GET /api/v1/appointments/stats
func (h *Handler) GetStats(c *gin.Context) {
	var req transport.StatsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.GetStats(c.Request.Context(), req.From, req.To)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/appointments/:id
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

// Update handles PUT /api/v1/appointments/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateAppointmentRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req, identity.Subject())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Cancel handles POST /api/v1/appointments/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.CancelAppointmentRequest
	if c.Request.ContentLength > 0 && !httpkit.BindJSON(c, &req) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	cancelledBy := req.CancelledBy
	if cancelledBy == "" {
		cancelledBy = identity.Subject()
	}

	result, err := h.svc.Cancel(c.Request.Context(), id, cancelledBy)
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

// splitSlots reads a comma separated slot filter such as "9:00 AM,1:30 PM".
func splitSlots(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
