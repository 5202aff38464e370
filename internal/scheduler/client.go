package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcapture_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	syncPendingUniqueFor = 5 * time.Minute
	resyncLeadDelay      = 30 * time.Second
	resyncLeadMaxRetry   = 5
)

// Client enqueues CRM sync work for the worker process.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSyncPending queues one bulk resync. A bulk resync already waiting
// in the queue absorbs the request.
func (c *Client) EnqueueSyncPending(ctx context.Context) error {
	_, err := c.client.EnqueueContext(ctx, NewSyncPendingTask(),
		asynq.Queue(c.queue),
		asynq.Unique(syncPendingUniqueFor),
		asynq.MaxRetry(0),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// EnqueueResyncLead queues a delayed resync of one lead.
func (c *Client) EnqueueResyncLead(ctx context.Context, leadID uuid.UUID) error {
	task, err := NewResyncLeadTask(ResyncLeadPayload{LeadID: leadID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.ProcessIn(resyncLeadDelay),
		asynq.MaxRetry(resyncLeadMaxRetry),
		asynq.TaskID(TaskResyncLead+":"+leadID.String()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
