package scheduler

import (
	"context"
	"errors"
	"testing"

	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeSyncService struct {
	resyncErr  error
	resync     *transport.ResyncResponse
	bulkErr    error
	resyncedID uuid.UUID
	bulkRuns   int
}

func (f *fakeSyncService) BulkResyncPending(context.Context) (*transport.BulkResyncResponse, error) {
	f.bulkRuns++
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	return &transport.BulkResyncResponse{Outcome: transport.BulkOutcomeSuccess, Total: 1, Succeeded: 1}, nil
}

func (f *fakeSyncService) Resync(_ context.Context, id uuid.UUID) (*transport.ResyncResponse, error) {
	f.resyncedID = id
	if f.resyncErr != nil {
		return nil, f.resyncErr
	}
	if f.resync != nil {
		return f.resync, nil
	}
	return &transport.ResyncResponse{Synced: true}, nil
}

func newTestWorker(svc *fakeSyncService) *Worker {
	return &Worker{leads: svc, log: logger.Discard()}
}

func resyncTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	task, err := NewResyncLeadTask(ResyncLeadPayload{LeadID: id})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestHandleResyncLead(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		svc       *fakeSyncService
		payloadID string
		wantErr   bool
		skipRetry bool
	}{
		{name: "synced", svc: &fakeSyncService{}, payloadID: id.String()},
		{name: "sync failure is recorded, not retried", svc: &fakeSyncService{resync: &transport.ResyncResponse{Error: "boom"}}, payloadID: id.String()},
		{name: "deleted lead dropped", svc: &fakeSyncService{resyncErr: apperr.NotFound("lead not found")}, payloadID: id.String()},
		{name: "sync disabled dropped", svc: &fakeSyncService{resyncErr: apperr.BadRequest("CRM sync is disabled")}, payloadID: id.String()},
		{name: "locked lead retried", svc: &fakeSyncService{resyncErr: apperr.Conflict("busy")}, payloadID: id.String(), wantErr: true},
		{name: "bad id never retried", svc: &fakeSyncService{}, payloadID: "nope", wantErr: true, skipRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestWorker(tt.svc).handleResyncLead(context.Background(), resyncTask(t, tt.payloadID))
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if tt.skipRetry != errors.Is(err, asynq.SkipRetry) {
				t.Fatalf("skip retry mismatch: %v", err)
			}
			if !tt.wantErr && tt.svc.resyncedID != id {
				t.Fatalf("expected resync of %s, got %s", id, tt.svc.resyncedID)
			}
		})
	}
}

func TestHandleResyncLeadRejectsGarbagePayload(t *testing.T) {
	w := newTestWorker(&fakeSyncService{})
	err := w.handleResyncLead(context.Background(), asynq.NewTask(TaskResyncLead, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}
}

func TestHandleSyncPending(t *testing.T) {
	svc := &fakeSyncService{}
	w := newTestWorker(svc)
	if err := w.handleSyncPending(context.Background(), NewSyncPendingTask()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.bulkRuns != 1 {
		t.Fatalf("expected one bulk run, got %d", svc.bulkRuns)
	}

	svc.bulkErr = apperr.BadRequest("CRM sync is disabled")
	if err := w.handleSyncPending(context.Background(), NewSyncPendingTask()); err != nil {
		t.Fatalf("disabled sync should not fail the task: %v", err)
	}

	svc.bulkErr = errors.New("db down")
	if err := w.handleSyncPending(context.Background(), NewSyncPendingTask()); err == nil {
		t.Fatalf("expected store failure to fail the task")
	}
}
