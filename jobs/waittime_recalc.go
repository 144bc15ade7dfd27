package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/filaflow/filaflow/internal/queueinstances"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/shared"
)

// defaultMinutesPerUser is the estimate used when a queue carries no
// waiting-time configuration at all.
const defaultMinutesPerUser = 5

// QueueStore is the slice of queue storage the recalculator needs.
type QueueStore interface {
	GetByID(ctx context.Context, id string) (queues.Queue, error)
	ListEnabled(ctx context.Context) ([]queues.Queue, error)
	SetCurrentWaitTime(ctx context.Context, queueID string, minutes int) error
}

// InstanceStore resolves today's instance of a queue.
type InstanceStore interface {
	FindForDay(ctx context.Context, queueID string, day shared.DayBounds) (queueinstances.Instance, error)
}

// WaitTimeRecalculator recomputes currentWaitingTimeInMinutes from the depth
// of today's waiting list, clamped into the queue's configured min/max band.
type WaitTimeRecalculator struct {
	queues    QueueStore
	instances InstanceStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewWaitTimeRecalculator(queueStore QueueStore, instanceStore InstanceStore, logger *slog.Logger) *WaitTimeRecalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WaitTimeRecalculator{queues: queueStore, instances: instanceStore, logger: logger, now: time.Now}
}

// Handle processes TaskWaitTimeRecalc tasks.
func (r *WaitTimeRecalculator) Handle(ctx context.Context, t *asynq.Task) error {
	var payload WaitTimeRecalcPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.QueueID != "" {
		queue, err := r.queues.GetByID(ctx, payload.QueueID)
		if err != nil {
			if errors.Is(err, queues.ErrNotFound) {
				return asynq.SkipRetry
			}
			return err
		}
		return r.recalcQueue(ctx, queue)
	}
	return r.RecalcAll(ctx)
}

// RecalcAll refreshes every enabled queue, fanning out with a bounded group.
func (r *WaitTimeRecalculator) RecalcAll(ctx context.Context) error {
	enabled, err := r.queues.ListEnabled(ctx)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, queue := range enabled {
		group.Go(func() error {
			return r.recalcQueue(ctx, queue)
		})
	}
	return group.Wait()
}

func (r *WaitTimeRecalculator) recalcQueue(ctx context.Context, queue queues.Queue) error {
	depth := 0
	instance, err := r.instances.FindForDay(ctx, queue.ID, shared.Today(r.now()))
	switch {
	case err == nil:
		depth = len(instance.UsersInQueue)
	case errors.Is(err, queueinstances.ErrInstanceNotFound):
		// No instance today means an empty queue.
	default:
		return err
	}

	minutes := EstimateWaitMinutes(queue, depth)
	if err := r.queues.SetCurrentWaitTime(ctx, queue.ID, minutes); err != nil {
		return err
	}
	r.logger.Debug("wait time recalculated",
		slog.String("queue_id", queue.ID), slog.Int("depth", depth), slog.Int("minutes", minutes))
	return nil
}

// EstimateWaitMinutes derives the estimate: waiting-list depth times the
// per-user cost, clamped into [min, max] when those bounds are configured.
func EstimateWaitMinutes(queue queues.Queue, depth int) int {
	perUser := defaultMinutesPerUser
	if queue.MinWaitingTimeInMinutes != nil && *queue.MinWaitingTimeInMinutes > 0 {
		perUser = *queue.MinWaitingTimeInMinutes
	}

	minutes := depth * perUser
	if queue.MinWaitingTimeInMinutes != nil && minutes < *queue.MinWaitingTimeInMinutes {
		minutes = *queue.MinWaitingTimeInMinutes
	}
	if queue.MaxWaitingTimeInMinutes != nil && minutes > *queue.MaxWaitingTimeInMinutes {
		minutes = *queue.MaxWaitingTimeInMinutes
	}
	return minutes
}
