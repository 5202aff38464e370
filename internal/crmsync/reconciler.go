package crmsync

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultLockTTL = 2 * time.Minute

// CRMClient is the subset of the LEAP client the reconciler drives.
type CRMClient interface {
	CreateProspect(ctx context.Context, form url.Values) (any, error)
	UpdateCustomer(ctx context.Context, id string, payload any) (any, error)
	UpdateJob(ctx context.Context, id string, payload any) (any, error)
}

// Reconciler creates, updates and recreates a lead's remote records.
type Reconciler struct {
	client   CRMClient
	locker   Locker
	defaults Defaults
	lockTTL  time.Duration
	tracer   trace.Tracer
	log      *logger.Logger
}

// NewReconciler creates a reconciler. A nil locker disables cross-process locking.
func NewReconciler(client CRMClient, locker Locker, defaults Defaults, log *logger.Logger) *Reconciler {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &Reconciler{
		client:   client,
		locker:   locker,
		defaults: defaults.withFallbacks(),
		lockTTL:  defaultLockTTL,
		tracer:   otel.Tracer("leadcapture_backend/internal/crmsync"),
		log:      log,
	}
}

// Defaults returns the routing defaults the reconciler applies.
func (r *Reconciler) Defaults() Defaults {
	return r.defaults
}

// Sync brings the remote customer and job in line with lead. The returned
// Result always carries the ids to persist, also when err is non-nil.
//
// A lead already being synced elsewhere yields a Conflict error and no
// remote calls.
func (r *Reconciler) Sync(ctx context.Context, lead Lead) (Result, error) {
	return r.run(ctx, "crmsync.sync", lead, r.sync)
}

// SyncTemperature rewrites only the job description of an already synced
// lead. A lead without a job gets a full sync; a job that is gone remotely is
// recreated the way a full sync would.
func (r *Reconciler) SyncTemperature(ctx context.Context, lead Lead) (Result, error) {
	return r.run(ctx, "crmsync.sync_temperature", lead, r.syncTemperature)
}

func (r *Reconciler) run(ctx context.Context, name string, lead Lead, fn func(context.Context, Lead) (Result, error)) (Result, error) {
	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("lead.id", lead.ID.String()),
		attribute.Bool("lead.linked", !lead.IDs.IsZero()),
	))
	defer span.End()

	unlock, ok, err := r.locker.TryLock(ctx, LockKey(lead.ID), r.lockTTL)
	if err != nil {
		// Proceed unlocked when the lock backend fails.
		r.log.Warn("sync lock unavailable, continuing without it", "leadId", lead.ID, "error", err)
		unlock = func() {}
	} else if !ok {
		span.SetStatus(codes.Error, "locked")
		return Result{IDs: lead.IDs}, apperr.Conflict("a sync for this lead is already in progress")
	}
	defer unlock()

	res, err := fn(ctx, lead)
	span.SetAttributes(attribute.String("sync.action", string(res.Action)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.GetKind(err).String())
	}
	return res, err
}

func (r *Reconciler) sync(ctx context.Context, lead Lead) (Result, error) {
	if lead.IDs.IsZero() {
		ids, err := r.create(ctx, lead)
		return Result{IDs: ids, Action: ActionCreated}, err
	}

	ids := lead.IDs
	customerGone, jobGone := false, false

	if ids.CustomerID != "" {
		_, err := r.client.UpdateCustomer(ctx, ids.CustomerID, customerUpdate(lead, r.defaults))
		switch {
		case err == nil:
		case apperr.Is(err, apperr.KindNotFound):
			r.log.Warn("remote customer no longer exists, recreating", "leadId", lead.ID, "customerId", ids.CustomerID)
			customerGone = true
		case apperr.Is(err, apperr.KindRemoteValidation):
			r.log.Warn("customer update rejected, not recreating", "leadId", lead.ID, "customerId", ids.CustomerID, "error", err)
			return Result{IDs: ids}, validationFailed("Customer Update", err)
		default:
			r.log.Warn("customer update failed, continuing with job update", "leadId", lead.ID, "customerId", ids.CustomerID, "error", err)
		}
	}

	// A job under a deleted customer cannot be updated meaningfully.
	if ids.JobID != "" && !customerGone {
		_, err := r.client.UpdateJob(ctx, ids.JobID, jobUpdate(lead, r.defaults, ids.CustomerID, ids.JobID))
		switch {
		case err == nil:
		case apperr.Is(err, apperr.KindNotFound):
			r.log.Warn("remote job no longer exists, recreating", "leadId", lead.ID, "jobId", ids.JobID)
			jobGone = true
		case apperr.Is(err, apperr.KindRemoteValidation):
			r.log.Warn("job update rejected, not recreating", "leadId", lead.ID, "jobId", ids.JobID, "error", err)
			return Result{IDs: ids}, validationFailed("Job Update", err)
		default:
			r.log.Error("job update failed", "leadId", lead.ID, "jobId", ids.JobID, "error", err)
			return Result{IDs: ids}, transient("LEAP CRM job update failed", err)
		}
	}

	if customerGone || jobGone {
		return r.recreate(ctx, lead)
	}

	r.log.Info("lead updated in CRM", "leadId", lead.ID, "customerId", ids.CustomerID, "jobId", ids.JobID)
	return Result{IDs: ids, Action: ActionUpdated}, nil
}

// recreate drops the stale ids and runs the create path exactly once.
func (r *Reconciler) recreate(ctx context.Context, lead Lead) (Result, error) {
	lead.IDs = RemoteIDs{}
	ids, err := r.create(ctx, lead)
	if err != nil {
		r.log.Error("recreating remote records failed", "leadId", lead.ID, "error", err)
	}
	return Result{IDs: ids, Action: ActionRecreated}, err
}

func (r *Reconciler) create(ctx context.Context, lead Lead) (RemoteIDs, error) {
	tree, err := r.client.CreateProspect(ctx, ProspectForm(lead, r.defaults))
	if err != nil {
		r.log.Error("prospect creation failed", "leadId", lead.ID, "error", err)
		if apperr.Is(err, apperr.KindRemoteValidation) {
			return RemoteIDs{}, validationFailed("Prospect Creation", err)
		}
		return RemoteIDs{}, transient("LEAP CRM prospect creation failed", err)
	}

	ids := ExtractIDs(tree)
	if ids.IsZero() && ids.ProspectID == "" {
		return RemoteIDs{}, apperr.Transient("LEAP CRM prospect response carried no identifiers", nil)
	}
	if ids.CustomerID == "" && ids.ProspectID != "" {
		// The prospect id doubles as the customer id when no customer block is returned.
		ids.CustomerID = ids.ProspectID
	}

	if ids.JobID != "" {
		if _, err := r.client.UpdateJob(ctx, ids.JobID, JobRename{Name: ids.JobID}); err != nil {
			r.log.Warn("renaming job after creation failed", "leadId", lead.ID, "jobId", ids.JobID, "error", err)
		}
	}

	r.log.Info("lead created in CRM", "leadId", lead.ID, "prospectId", ids.ProspectID, "customerId", ids.CustomerID, "jobId", ids.JobID)
	return ids, nil
}

func (r *Reconciler) syncTemperature(ctx context.Context, lead Lead) (Result, error) {
	if lead.IDs.JobID == "" {
		return r.sync(ctx, lead)
	}

	_, err := r.client.UpdateJob(ctx, lead.IDs.JobID, temperaturePatch(lead, r.defaults))
	switch {
	case err == nil:
		r.log.Info("job temperature updated", "leadId", lead.ID, "jobId", lead.IDs.JobID)
		return Result{IDs: lead.IDs, Action: ActionTemperature}, nil
	case apperr.Is(err, apperr.KindNotFound):
		r.log.Warn("job missing on temperature update, recreating", "leadId", lead.ID, "jobId", lead.IDs.JobID)
		return r.recreate(ctx, lead)
	case apperr.Is(err, apperr.KindRemoteValidation):
		return Result{IDs: lead.IDs}, validationFailed("Job Update", err)
	default:
		return Result{IDs: lead.IDs}, transient("LEAP CRM job update failed", err)
	}
}

// validationFailed keeps the remote field detail and renders it into the
// message stored on the lead.
func validationFailed(stage string, err error) error {
	fields := apperr.FieldErrors(err)
	detail := FormatFieldErrors(fields)
	if detail == "" {
		detail = "Unknown validation error"
	}
	return apperr.RemoteValidation(fmt.Sprintf("LEAP CRM %s Validation Failed: %s", stage, detail), fields)
}

// transient keeps errors that already carry a kind and wraps the rest.
func transient(msg string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Transient(msg, err)
}

// FormatFieldErrors renders "field: m1, m2; field2: m3" with fields sorted.
func FormatFieldErrors(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(fields[name], ", "))
	}
	return strings.Join(parts, "; ")
}

// LockKey is the lock key a lead sync holds.
func LockKey(id uuid.UUID) string {
	return id.String()
}
