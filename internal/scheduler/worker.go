package scheduler

import (
	"context"
	"fmt"

	"leadcapture_backend/internal/leads"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker runs queued CRM sync tasks and, when a cron spec is configured,
// the periodic bulk resync of pending leads.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	leads     leads.SyncService
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, svc leads.SyncService, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		leads:  svc,
		log:    log,
	}
	w.mux.HandleFunc(TaskSyncPending, w.handleSyncPending)
	w.mux.HandleFunc(TaskResyncLead, w.handleResyncLead)

	if spec := cfg.GetSyncPendingCron(); spec != "" {
		w.scheduler = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: newAsynqLogger(log)})
		if _, err := w.scheduler.Register(spec, NewSyncPendingTask(),
			asynq.Queue(queue),
			asynq.Unique(syncPendingUniqueFor),
			asynq.MaxRetry(0),
		); err != nil {
			return nil, fmt.Errorf("invalid sync pending cron %q: %w", spec, err)
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start periodic scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	w.log.Info("scheduler worker started")

	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("scheduler worker stopped")
	return nil
}

func (w *Worker) handleSyncPending(ctx context.Context, _ *asynq.Task) error {
	result, err := w.leads.BulkResyncPending(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindBadRequest) {
			w.log.Info("pending resync skipped", "reason", err.Error())
			return nil
		}
		return err
	}

	w.log.Info("pending resync task finished",
		"outcome", result.Outcome, "total", result.Total, "failed", result.Failed)
	return nil
}

func (w *Worker) handleResyncLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseResyncLeadPayload(task)
	if err != nil {
		return fmt.Errorf("decode resync payload: %v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("invalid lead id %q: %w", payload.LeadID, asynq.SkipRetry)
	}

	result, err := w.leads.Resync(ctx, leadID)
	switch {
	case apperr.Is(err, apperr.KindNotFound), apperr.Is(err, apperr.KindBadRequest):
		w.log.Info("deferred resync dropped", "leadId", leadID, "reason", err.Error())
		return nil
	case err != nil:
		// conflicts are retried with backoff
		return err
	}

	if !result.Synced {
		w.log.Warn("deferred resync failed", "leadId", leadID, "error", result.Error)
	}
	return nil
}
