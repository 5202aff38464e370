// Package leads provides the lead capture bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadcapture_backend/internal/events"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/leads/handler"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/internal/leads/service"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// syncer is nil when CRM sync is disabled, scheduler when no worker is configured.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, settings Settings, booker ports.AppointmentBooker, syncer ports.CRMSyncer, scheduler ports.ResyncScheduler, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, repo, booker, syncer, scheduler, eventBus, settings, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead orchestrator for use by the background worker.
func (m *Module) Service() SyncService {
	return m.service
}

// RegisterRoutes mounts the public intake routes and the staff routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	intake := func(c *gin.Context) { c.Next() }
	if ctx.IntakeRateLimiter != nil {
		intake = ctx.IntakeRateLimiter.RateLimit()
	}
	m.handler.RegisterPublicRoutes(ctx.V1, intake)
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
