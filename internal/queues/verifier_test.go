package queues_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
	_ "github.com/filaflow/filaflow/testing"
)

func TestVerifyClientWideRolesPass(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")
	verifier := queues.NewUnityAccessVerifier(svc)

	for _, role := range []roles.Role{roles.ClientOwner, roles.ClientAdmin} {
		identity := &shared.Identity{ID: "adm-1", Name: "Dana", Role: role, ClientID: "cli-1"}
		require.NoError(t, verifier.Verify(context.Background(), identity, q.ID))
	}
}

func TestVerifyUnityAdminInScope(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")
	verifier := queues.NewUnityAccessVerifier(svc)

	identity := &shared.Identity{ID: "adm-2", Name: "Rafa", Role: roles.UnityAdmin, ClientID: "cli-1", UnityIDs: []string{"uni-1", "uni-2"}}
	require.NoError(t, verifier.Verify(context.Background(), identity, q.ID))
}

func TestVerifyUnityAdminOutOfScope(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")
	verifier := queues.NewUnityAccessVerifier(svc)

	identity := &shared.Identity{ID: "adm-2", Name: "Rafa", Role: roles.UnityAdmin, ClientID: "cli-1", UnityIDs: []string{"uni-2"}}
	err := verifier.Verify(context.Background(), identity, q.ID)
	require.ErrorIs(t, err, queues.ErrAccessDenied)
}

func TestVerifyUnityAdminWithoutScope(t *testing.T) {
	svc := newTestService(newMemRepo())
	q := createQueue(t, svc, "Triage", "uni-1")
	verifier := queues.NewUnityAccessVerifier(svc)

	identity := &shared.Identity{ID: "adm-2", Name: "Rafa", Role: roles.UnityAdmin, ClientID: "cli-1"}
	err := verifier.Verify(context.Background(), identity, q.ID)
	require.ErrorIs(t, err, queues.ErrAccessDenied)
}

func TestVerifyQueueOfAnotherClient(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	foreign, err := repo.Create(context.Background(), queues.Queue{ID: "q-foreign", Name: "Other", Type: queues.TypeGeneral, Enabled: true, ClientID: "cli-2", UnityID: "uni-9"})
	require.NoError(t, err)
	verifier := queues.NewUnityAccessVerifier(svc)

	identity := &shared.Identity{ID: "own-1", Name: "Dana", Role: roles.ClientOwner, ClientID: "cli-1"}
	err = verifier.Verify(context.Background(), identity, foreign.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
