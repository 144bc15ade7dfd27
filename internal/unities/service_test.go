package unities_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/unities"
	_ "github.com/filaflow/filaflow/testing"
)

type memRepo struct {
	stored map[string]unities.Unity
}

func newMemRepo() *memRepo {
	return &memRepo{stored: map[string]unities.Unity{}}
}

func (m *memRepo) Get(ctx context.Context, id string) (unities.Unity, error) {
	u, ok := m.stored[id]
	if !ok {
		return unities.Unity{}, unities.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.stored[id]
	return ok, nil
}

func (m *memRepo) Create(ctx context.Context, unity unities.Unity) (unities.Unity, error) {
	unity.CreatedAt = time.Now()
	unity.UpdatedAt = unity.CreatedAt
	m.stored[unity.ID] = unity
	return unity, nil
}

func (m *memRepo) ListByClient(ctx context.Context, clientID string) ([]unities.Unity, error) {
	var out []unities.Unity
	for _, u := range m.stored {
		if u.ClientID == clientID {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubClients struct {
	known map[string]bool
}

func (s *stubClients) Exists(ctx context.Context, id string) (bool, error) {
	return s.known[id], nil
}

func newTestService() *unities.Service {
	return unities.NewService(newMemRepo(), &stubClients{known: map[string]bool{"cli-1": true}})
}

func TestCreateUnityTitlesName(t *testing.T) {
	svc := newTestService()

	unity, err := svc.Create(context.Background(), "cli-1", "  downtown medical center ", "Main St 1")
	require.NoError(t, err)
	require.NotEmpty(t, unity.ID)
	require.Equal(t, "Downtown Medical Center", unity.Name)
	require.Equal(t, "Main St 1", unity.Address)
	require.Equal(t, "cli-1", unity.ClientID)
}

func TestCreateUnityValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), "cli-1", "   ", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), "", "Downtown", "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateUnityUnknownClient(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), "cli-ghost", "Downtown", "")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListByClient(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), "cli-1", "Downtown", "")
	require.NoError(t, err)

	listed, err := svc.ListByClient(context.Background(), "cli-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.ListByClient(context.Background(), "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
