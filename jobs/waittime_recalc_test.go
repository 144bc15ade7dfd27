package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/jobs"

	"github.com/filaflow/filaflow/internal/queueinstances"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/shared"
	_ "github.com/filaflow/filaflow/testing"
)

type stubQueueStore struct {
	queues    map[string]queues.Queue
	waitTimes map[string]int
}

func newStubQueueStore(qs ...queues.Queue) *stubQueueStore {
	s := &stubQueueStore{queues: map[string]queues.Queue{}, waitTimes: map[string]int{}}
	for _, q := range qs {
		s.queues[q.ID] = q
	}
	return s
}

func (s *stubQueueStore) GetByID(ctx context.Context, id string) (queues.Queue, error) {
	q, ok := s.queues[id]
	if !ok {
		return queues.Queue{}, queues.ErrNotFound
	}
	return q, nil
}

func (s *stubQueueStore) ListEnabled(ctx context.Context) ([]queues.Queue, error) {
	var out []queues.Queue
	for _, q := range s.queues {
		if q.Enabled {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubQueueStore) SetCurrentWaitTime(ctx context.Context, queueID string, minutes int) error {
	s.waitTimes[queueID] = minutes
	return nil
}

type stubInstanceStore struct {
	byQueue map[string]queueinstances.Instance
}

func (s *stubInstanceStore) FindForDay(ctx context.Context, queueID string, day shared.DayBounds) (queueinstances.Instance, error) {
	inst, ok := s.byQueue[queueID]
	if !ok || !day.Contains(inst.Date) {
		return queueinstances.Instance{}, queueinstances.ErrInstanceNotFound
	}
	return inst, nil
}

func TestEstimateWaitMinutes(t *testing.T) {
	minWait, maxWait := 10, 40

	require.Equal(t, 15, jobs.EstimateWaitMinutes(queues.Queue{}, 3))
	require.Equal(t, 10, jobs.EstimateWaitMinutes(queues.Queue{MinWaitingTimeInMinutes: &minWait}, 0))
	require.Equal(t, 30, jobs.EstimateWaitMinutes(queues.Queue{MinWaitingTimeInMinutes: &minWait}, 3))
	require.Equal(t, 40, jobs.EstimateWaitMinutes(queues.Queue{MinWaitingTimeInMinutes: &minWait, MaxWaitingTimeInMinutes: &maxWait}, 9))
}

func TestRecalcAllRefreshesEnabledQueues(t *testing.T) {
	store := newStubQueueStore(
		queues.Queue{ID: "q-1", Enabled: true, UnityID: "uni-1"},
		queues.Queue{ID: "q-2", Enabled: true, UnityID: "uni-1"},
		queues.Queue{ID: "q-off", Enabled: false, UnityID: "uni-1"},
	)
	instances := &stubInstanceStore{byQueue: map[string]queueinstances.Instance{
		"q-1": {ID: "qi-1", QueueID: "q-1", Date: time.Now(), UsersInQueue: []string{"a", "b", "c"}},
	}}

	recalc := jobs.NewWaitTimeRecalculator(store, instances, nil)
	require.NoError(t, recalc.RecalcAll(context.Background()))

	require.Equal(t, 15, store.waitTimes["q-1"])
	require.Equal(t, 0, store.waitTimes["q-2"])
	_, touched := store.waitTimes["q-off"]
	require.False(t, touched)
}

func TestHandleSingleQueueTask(t *testing.T) {
	store := newStubQueueStore(queues.Queue{ID: "q-1", Enabled: true, UnityID: "uni-1"})
	instances := &stubInstanceStore{byQueue: map[string]queueinstances.Instance{
		"q-1": {ID: "qi-1", QueueID: "q-1", Date: time.Now(), UsersInQueue: []string{"a"}},
	}}
	recalc := jobs.NewWaitTimeRecalculator(store, instances, nil)

	task, err := jobs.NewWaitTimeRecalcTask("q-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, recalc.Handle(context.Background(), task))
	require.Equal(t, 5, store.waitTimes["q-1"])
}

func TestHandleUnknownQueueSkipsRetry(t *testing.T) {
	recalc := jobs.NewWaitTimeRecalculator(newStubQueueStore(), &stubInstanceStore{}, nil)

	task, err := jobs.NewWaitTimeRecalcTask("q-ghost", time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, recalc.Handle(context.Background(), task), asynq.SkipRetry)
}
