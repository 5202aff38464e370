package service

import (
	"context"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const msgSyncDisabled = "CRM sync is disabled"

type syncFunc func(ctx context.Context, lead domain.Lead) (ports.SyncOutcome, error)

// syncAndRecord runs one sync and stores its outcome on the lead. A failed
// sync is recorded on the lead, not returned. The error is a lock conflict,
// in which case nothing was stored, or a failure to persist the outcome.
func (s *Service) syncAndRecord(ctx context.Context, lead *domain.Lead, run syncFunc) error {
	ctx = logger.WithLeadID(ctx, lead.ID.String())
	outcome, err := run(ctx, *lead)
	if apperr.Is(err, apperr.KindConflict) {
		return err
	}

	if err != nil {
		lead.MarkSyncFailed(outcome.IDs, err.Error())
		s.log.Warn("crm sync failed", "leadId", lead.ID, "error", err)
	} else {
		lead.MarkSynced(outcome.IDs, s.now().UTC())
		s.log.Info("crm sync succeeded", "leadId", lead.ID, "jobId", outcome.IDs.JobID, "recreated", outcome.Recreated)
	}

	if perr := s.repo.UpdateSyncState(ctx, lead); perr != nil {
		s.log.Error("failed to store crm sync outcome", "leadId", lead.ID, "error", perr)
		return perr
	}

	if err != nil {
		s.bus.Publish(ctx, events.LeadSyncFailed{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Reason:    lead.SyncError,
		})
		return nil
	}
	s.bus.Publish(ctx, events.LeadSynced{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		CustomerID: lead.Remote.CustomerID,
		JobID:      lead.Remote.JobID,
		ProspectID: lead.Remote.ProspectID,
		Recreated:  outcome.Recreated,
	})
	return nil
}

// handleAutoSyncError deals with an automatic sync that did not run to
// completion. A skipped sync is handed to the worker so the lead's latest
// state still reaches the CRM once the other sync is done.
func (s *Service) handleAutoSyncError(ctx context.Context, leadID uuid.UUID, err error) {
	if !apperr.Is(err, apperr.KindConflict) {
		s.log.Error("crm sync could not be recorded", "leadId", leadID, "error", err)
		return
	}

	s.log.Info("crm sync skipped, another sync holds the lead", "leadId", leadID)
	if s.scheduler == nil {
		return
	}
	if qerr := s.scheduler.EnqueueResyncLead(ctx, leadID); qerr != nil {
		s.log.Warn("failed to queue deferred crm resync", "leadId", leadID, "error", qerr)
	}
}

// Resync syncs one lead on request. A lead another sync is working on
// fails with a conflict; a failed sync is reported in the response.
func (s *Service) Resync(ctx context.Context, id uuid.UUID) (*transport.ResyncResponse, error) {
	if !s.syncEnabled() {
		return nil, apperr.BadRequest(msgSyncDisabled)
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.syncAndRecord(ctx, lead, s.syncer.Sync); err != nil {
		return nil, err
	}

	resp := &transport.ResyncResponse{
		Lead:   toLeadResponse(*lead),
		Synced: lead.SyncStatus == domain.SyncSynced,
	}
	if !resp.Synced {
		resp.Error = lead.SyncError
	}
	return resp, nil
}

// BulkResyncPending syncs every pending lead one after another, paced by
// the configured delay. A failing lead never stops the run; leads held by
// another sync are skipped.
func (s *Service) BulkResyncPending(ctx context.Context) (*transport.BulkResyncResponse, error) {
	if !s.syncEnabled() {
		return nil, apperr.BadRequest(msgSyncDisabled)
	}

	ids, err := s.repo.ListPendingIDs(ctx)
	if err != nil {
		return nil, err
	}

	resp := &transport.BulkResyncResponse{
		Total:   len(ids),
		Results: make([]transport.BulkResyncItem, 0, len(ids)),
	}
	limiter := rate.NewLimiter(rate.Every(s.settings.ResyncDelay), 1)

	for _, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			resp.Outcome = bulkOutcome(resp)
			return resp, err
		}

		item := s.resyncOne(ctx, id)
		switch {
		case item.Skipped:
			resp.Skipped++
		case item.Synced:
			resp.Succeeded++
		default:
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}

	resp.Outcome = bulkOutcome(resp)
	s.log.Info("bulk crm resync finished",
		"outcome", resp.Outcome, "total", resp.Total,
		"succeeded", resp.Succeeded, "failed", resp.Failed, "skipped", resp.Skipped)
	return resp, nil
}

func (s *Service) resyncOne(ctx context.Context, id uuid.UUID) transport.BulkResyncItem {
	item := transport.BulkResyncItem{LeadID: id}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	if err := s.syncAndRecord(ctx, lead, s.syncer.Sync); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			item.Skipped = true
			return item
		}
		item.Error = err.Error()
		return item
	}

	item.Synced = lead.SyncStatus == domain.SyncSynced
	if !item.Synced {
		item.Error = lead.SyncError
	}
	return item
}

func bulkOutcome(r *transport.BulkResyncResponse) transport.BulkOutcome {
	switch {
	case r.Succeeded == 0 && r.Failed == 0:
		return transport.BulkOutcomeNone
	case r.Failed == 0:
		return transport.BulkOutcomeSuccess
	case r.Succeeded == 0:
		return transport.BulkOutcomeFailure
	default:
		return transport.BulkOutcomePartial
	}
}

// EnqueuePendingResync hands the bulk resync to the background worker.
func (s *Service) EnqueuePendingResync(ctx context.Context) error {
	if !s.syncEnabled() {
		return apperr.BadRequest(msgSyncDisabled)
	}
	if s.scheduler == nil {
		return apperr.Configuration("background worker is not configured")
	}
	return s.scheduler.EnqueueSyncPending(ctx)
}
