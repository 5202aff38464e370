// Package auth provides staff sign-in for the back-office routes.
package auth

import (
	"leadcapture_backend/internal/auth/handler"
	"leadcapture_backend/internal/auth/service"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/validator"
)

// RoleStaff is the role every signed-in back-office user carries.
const RoleStaff = service.RoleStaff

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module. There is a single staff account,
// configured through the environment.
func NewModule(cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cfg, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	if ctx.AuthRateLimiter != nil {
		authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
