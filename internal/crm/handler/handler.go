package handler

import (
	"context"
	"net/http"
	"strings"

	"leadcapture_backend/internal/leap"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Remote is the part of the CRM client the staff routes call directly.
type Remote interface {
	TestConnection(ctx context.Context) error
	GetCustomer(ctx context.Context, id string) (any, error)
}

// Handler serves the CRM reference data and diagnostics routes
type Handler struct {
	remote  Remote
	lookups leap.Lookups
}

// New creates a new CRM handler
func New(remote Remote, lookups leap.Lookups) *Handler {
	return &Handler{remote: remote, lookups: lookups}
}

// RegisterRoutes registers the staff CRM routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/test-connection", h.TestConnection)
	rg.GET("/trades", h.Trades)
	rg.GET("/divisions", h.Divisions)
	rg.GET("/sales-reps", h.SalesReps)
	rg.POST("/lookups/refresh", h.RefreshLookups)
	rg.GET("/customers/:id", h.GetCustomer)
}

// TestConnection handles GET /api/v1/crm/test-connection
func (h *Handler) TestConnection(c *gin.Context) {
	if httpkit.HandleError(c, h.remote.TestConnection(c.Request.Context())) {
		return
	}
	httpkit.OK(c, gin.H{"connected": true})
}

// Trades handles GET /api/v1/crm/trades
func (h *Handler) Trades(c *gin.Context) {
	trades, err := h.lookups.Trades(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, trades)
}

// Divisions handles GET /api/v1/crm/divisions
func (h *Handler) Divisions(c *gin.Context) {
	divisions, err := h.lookups.Divisions(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, divisions)
}

// SalesReps handles GET /api/v1/crm/sales-reps
func (h *Handler) SalesReps(c *gin.Context) {
	reps, err := h.lookups.SalesReps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reps)
}

// RefreshLookups handles POST /api/v1/crm/lookups/refresh. It is a no-op
// when the lookups are not cached.
func (h *Handler) RefreshLookups(c *gin.Context) {
	if inv, ok := h.lookups.(interface{ Invalidate(context.Context) error }); ok {
		if httpkit.HandleError(c, inv.Invalidate(c.Request.Context())) {
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// GetCustomer handles GET /api/v1/crm/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	customer, err := h.remote.GetCustomer(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, customer)
}
