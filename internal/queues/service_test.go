package queues_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/queues"
	_ "github.com/filaflow/filaflow/testing"
)

type memRepo struct {
	order  []string
	stored map[string]queues.Queue
}

func newMemRepo() *memRepo {
	return &memRepo{stored: map[string]queues.Queue{}}
}

func (m *memRepo) GetByIDs(ctx context.Context, ids []string, clientID string) ([]queues.Queue, error) {
	var out []queues.Queue
	for _, id := range m.order {
		q := m.stored[id]
		if q.ClientID == clientID && slices.Contains(ids, id) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (queues.Queue, error) {
	q, ok := m.stored[id]
	if !ok {
		return queues.Queue{}, queues.ErrNotFound
	}
	return q, nil
}

func (m *memRepo) Create(ctx context.Context, queue queues.Queue) (queues.Queue, error) {
	queue.CreatedAt = time.Now()
	queue.UpdatedAt = queue.CreatedAt
	m.order = append(m.order, queue.ID)
	m.stored[queue.ID] = queue
	return queue, nil
}

func (m *memRepo) Update(ctx context.Context, queueID, clientID string, patch queues.UpdatePatch) (queues.Queue, error) {
	q, ok := m.stored[queueID]
	if !ok || q.ClientID != clientID {
		return queues.Queue{}, queues.ErrNotFound
	}
	if patch.Name != nil {
		q.Name = *patch.Name
	}
	if patch.Type != nil {
		q.Type = *patch.Type
	}
	if patch.IsActive != nil {
		q.IsActive = *patch.IsActive
	}
	if patch.StartQueueAt != nil {
		q.StartQueueAt = patch.StartQueueAt
	}
	if patch.EndQueueAt != nil {
		q.EndQueueAt = patch.EndQueueAt
	}
	if patch.MaxUsersInQueue != nil {
		q.MaxUsersInQueue = patch.MaxUsersInQueue
	}
	if patch.MinWaitingTimeInMinutes != nil {
		q.MinWaitingTimeInMinutes = patch.MinWaitingTimeInMinutes
	}
	if patch.MaxWaitingTimeInMinutes != nil {
		q.MaxWaitingTimeInMinutes = patch.MaxWaitingTimeInMinutes
	}
	if patch.CurrentWaitingTimeInMinutes != nil {
		q.CurrentWaitingTimeInMinutes = patch.CurrentWaitingTimeInMinutes
	}
	if patch.AdminID != nil {
		q.AdminID = patch.AdminID
	}
	q.UpdatedAt = time.Now()
	m.stored[queueID] = q
	return q, nil
}

func (m *memRepo) SetEnabled(ctx context.Context, queueID, clientID string, enabled bool) (queues.Queue, error) {
	q, ok := m.stored[queueID]
	if !ok || q.ClientID != clientID || q.Enabled == enabled {
		return queues.Queue{}, queues.ErrNotFound
	}
	q.Enabled = enabled
	q.UpdatedAt = time.Now()
	m.stored[queueID] = q
	return q, nil
}

func (m *memRepo) ListByUnity(ctx context.Context, unityID string) ([]queues.Queue, error) {
	var out []queues.Queue
	for _, id := range m.order {
		if q := m.stored[id]; q.UnityID == unityID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memRepo) ListEnabled(ctx context.Context) ([]queues.Queue, error) {
	var out []queues.Queue
	for _, id := range m.order {
		if q := m.stored[id]; q.Enabled {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memRepo) SetCurrentWaitTime(ctx context.Context, queueID string, minutes int) error {
	q, ok := m.stored[queueID]
	if !ok {
		return queues.ErrNotFound
	}
	q.CurrentWaitingTimeInMinutes = &minutes
	m.stored[queueID] = q
	return nil
}

type memDirectory struct {
	ids map[string]bool
}

func directoryOf(ids ...string) *memDirectory {
	d := &memDirectory{ids: map[string]bool{}}
	for _, id := range ids {
		d.ids[id] = true
	}
	return d
}

func (d *memDirectory) Exists(ctx context.Context, id string) (bool, error) {
	return d.ids[id], nil
}

func newTestService(repo *memRepo) *queues.Service {
	return queues.NewService(repo, directoryOf("cli-1"), directoryOf("uni-1", "uni-2"))
}

func createQueue(t *testing.T, svc *queues.Service, name, unityID string) queues.Queue {
	t.Helper()
	q, err := svc.Create(context.Background(), queues.CreateQueueInput{
		Name:     name,
		Type:     queues.TypeGeneral,
		ClientID: "cli-1",
		UnityID:  unityID,
	})
	require.NoError(t, err)
	return q
}

func TestCreateQueueDefaults(t *testing.T) {
	svc := newTestService(newMemRepo())

	q := createQueue(t, svc, "Triage", "uni-1")
	require.NotEmpty(t, q.ID)
	require.True(t, q.Enabled)
	require.True(t, q.IsActive)
	require.Equal(t, "cli-1", q.ClientID)
	require.Equal(t, "uni-1", q.UnityID)
}

func TestCreateQueueValidation(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, queues.CreateQueueInput{Type: queues.TypeGeneral, ClientID: "cli-1", UnityID: "uni-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", ClientID: "cli-1", UnityID: "uni-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", Type: "WEIRD", ClientID: "cli-1", UnityID: "uni-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", Type: queues.TypeGeneral, UnityID: "uni-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", Type: queues.TypeGeneral, ClientID: "cli-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateQueueUnknownTenant(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", Type: queues.TypeGeneral, ClientID: "cli-ghost", UnityID: "uni-1"})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(ctx, queues.CreateQueueInput{Name: "Triage", Type: queues.TypeGeneral, ClientID: "cli-1", UnityID: "uni-ghost"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGetByIDsDropsForeignQueues(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	mine := createQueue(t, svc, "Mine", "uni-1")

	foreign, err := repo.Create(context.Background(), queues.Queue{ID: "q-foreign", Name: "Other", Type: queues.TypeGeneral, Enabled: true, ClientID: "cli-2", UnityID: "uni-9"})
	require.NoError(t, err)

	got, err := svc.GetByIDs(context.Background(), []string{mine.ID, foreign.ID, "q-ghost"}, "cli-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, mine.ID, got[0].ID)
}

func TestGetByIDsValidation(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, err := svc.GetByIDs(context.Background(), nil, "cli-1")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.GetByIDs(context.Background(), []string{"q-1"}, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateQueue(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")

	name := "Priority Triage"
	max := 25
	updated, err := svc.Update(context.Background(), q.ID, "cli-1", queues.UpdatePatch{Name: &name, MaxUsersInQueue: &max})
	require.NoError(t, err)
	require.Equal(t, "Priority Triage", updated.Name)
	require.Equal(t, 25, *updated.MaxUsersInQueue)
}

func TestUpdateQueueEmptyPayload(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")

	_, err := svc.Update(context.Background(), q.ID, "cli-1", queues.UpdatePatch{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateQueueWrongClient(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")

	name := "Hijack"
	_, err := svc.Update(context.Background(), q.ID, "cli-2", queues.UpdatePatch{Name: &name})
	require.ErrorIs(t, err, queues.ErrNotFound)
}

func TestDisableEnableRoundTrip(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")

	disabled, err := svc.Disable(context.Background(), q.ID, "cli-1")
	require.NoError(t, err)
	require.False(t, disabled.Enabled)

	// Second disable finds nothing to transition.
	_, err = svc.Disable(context.Background(), q.ID, "cli-1")
	require.ErrorIs(t, err, queues.ErrNotFound)

	enabled, err := svc.Enable(context.Background(), q.ID, "cli-1")
	require.NoError(t, err)
	require.True(t, enabled.Enabled)

	_, err = svc.Enable(context.Background(), q.ID, "cli-1")
	require.ErrorIs(t, err, queues.ErrNotFound)
}
