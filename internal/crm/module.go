// Package crm exposes the CRM reference data and diagnostics to staff.
package crm

import (
	"leadcapture_backend/internal/crm/handler"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/leap"
)

// Module represents the CRM routes module
type Module struct {
	handler *handler.Handler
}

// NewModule wires the staff CRM routes to a client and its lookups.
func NewModule(client *leap.Client, lookups leap.Lookups) *Module {
	return &Module{handler: handler.New(client, lookups)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "crm"
}

// RegisterRoutes registers the staff routes under /api/v1/crm
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/crm"))
}

var _ apphttp.Module = (*Module)(nil)
