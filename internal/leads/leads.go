// Package leads provides lead capture functionality.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"

	"leadcapture_backend/internal/leads/service"
	"leadcapture_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// Settings are the orchestrator switches the composition root provides.
type Settings = service.Settings

// SyncService is what the background worker drives.
type SyncService interface {
	// BulkResyncPending syncs every pending lead sequentially.
	BulkResyncPending(ctx context.Context) (*transport.BulkResyncResponse, error)
	// Resync syncs one lead; a lead held by another sync fails with a conflict.
	Resync(ctx context.Context, id uuid.UUID) (*transport.ResyncResponse, error)
}

var _ SyncService = (*service.Service)(nil)
