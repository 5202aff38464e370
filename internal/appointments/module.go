// Package appointments provides the appointments domain module: slot
// availability, atomic booking and the staff appointment routes.
package appointments

import (
	"leadcapture_backend/internal/appointments/handler"
	"leadcapture_backend/internal/appointments/repository"
	"leadcapture_backend/internal/appointments/service"
	"leadcapture_backend/internal/events"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the appointments domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new appointments module with all dependencies wired.
// It registers the "timeslot" validation tag against the schedule's labels.
func NewModule(pool *pgxpool.Pool, schedule service.Schedule, val *validator.Validator, eventBus events.Bus, log *logger.Logger) (*Module, error) {
	if err := val.RegisterValidation("timeslot", func(fl govalidator.FieldLevel) bool {
		return schedule.HasSlot(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, schedule, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "appointments"
}

// RegisterRoutes registers public availability routes and staff routes under /api/v1/appointments
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/appointments"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/appointments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
