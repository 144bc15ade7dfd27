package queues

import (
	"context"
	"fmt"
	"slices"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
)

// ErrAccessDenied indicates the admin's unity scope does not cover the queue.
var ErrAccessDenied = fmt.Errorf("%w: queue is outside admin unity scope", httpx.ErrNotAllowed)

// UnityAccessVerifier decides whether an authenticated admin may mutate a
// specific queue. The coarse role-rank gate must have passed already; for
// UNITY_ADMIN the rank is necessary but not sufficient, the queue's unity
// must also be inside the admin's scope.
type UnityAccessVerifier struct {
	queues *Service
}

func NewUnityAccessVerifier(queues *Service) *UnityAccessVerifier {
	return &UnityAccessVerifier{queues: queues}
}

// Verify resolves the queue under the admin's client and checks unity
// ownership. Client-wide roles always pass.
func (v *UnityAccessVerifier) Verify(ctx context.Context, identity *shared.Identity, queueID string) error {
	list, err := v.queues.GetByIDs(ctx, []string{queueID}, identity.ClientID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("%w: queue %s", httpx.ErrNotFound, queueID)
	}
	return v.VerifyUnityScope(identity, list[0].UnityID)
}

// VerifyUnityScope is the fine-grained half of the check: given a resolved
// unity id, decide whether the admin's scope covers it. Used directly when
// there is no queue to resolve yet, as on queue creation.
func (v *UnityAccessVerifier) VerifyUnityScope(identity *shared.Identity, unityID string) error {
	if identity.Role == roles.ClientOwner || identity.Role == roles.ClientAdmin {
		return nil
	}
	if len(identity.UnityIDs) == 0 {
		return fmt.Errorf("%w: admin %s (%s) has no unity scope", ErrAccessDenied, identity.Name, identity.ID)
	}
	if !slices.Contains(identity.UnityIDs, unityID) {
		return fmt.Errorf("%w: admin %s (%s) cannot manage unity %s", ErrAccessDenied, identity.Name, identity.ID, unityID)
	}
	return nil
}
