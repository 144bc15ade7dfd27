package queues

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/filaflow/filaflow/internal/platform/httpx"
)

// ClientDirectory resolves client tenants during queue creation.
type ClientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// UnityDirectory resolves unities during queue creation.
type UnityDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service owns the queue lifecycle: creation, scoped lookup and the
// enable/disable transitions. Every operation is scoped by client id.
type Service struct {
	repo    Repository
	clients ClientDirectory
	unities UnityDirectory
}

func NewService(repo Repository, clients ClientDirectory, unities UnityDirectory) *Service {
	return &Service{repo: repo, clients: clients, unities: unities}
}

// Create validates and persists a new queue, enabled by default.
func (s *Service) Create(ctx context.Context, in CreateQueueInput) (Queue, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Queue{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if in.Type == "" {
		return Queue{}, fmt.Errorf("%w: queue type is required", httpx.ErrValidation)
	}
	if !ValidType(in.Type) {
		return Queue{}, fmt.Errorf("%w: unknown queue type %q", httpx.ErrValidation, string(in.Type))
	}
	if in.ClientID == "" {
		return Queue{}, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	if in.UnityID == "" {
		return Queue{}, fmt.Errorf("%w: unity id is required", httpx.ErrValidation)
	}

	clientExists, err := s.clients.Exists(ctx, in.ClientID)
	if err != nil {
		return Queue{}, err
	}
	if !clientExists {
		return Queue{}, fmt.Errorf("%w: client %s not found", httpx.ErrNotFound, in.ClientID)
	}

	unityExists, err := s.unities.Exists(ctx, in.UnityID)
	if err != nil {
		return Queue{}, err
	}
	if !unityExists {
		return Queue{}, fmt.Errorf("%w: unity %s not found", httpx.ErrNotFound, in.UnityID)
	}

	return s.repo.Create(ctx, Queue{
		ID:                      uuid.NewString(),
		Name:                    strings.TrimSpace(in.Name),
		Type:                    in.Type,
		IsActive:                true,
		StartQueueAt:            in.StartQueueAt,
		EndQueueAt:              in.EndQueueAt,
		MaxUsersInQueue:         in.MaxUsersInQueue,
		MinWaitingTimeInMinutes: in.MinWaitingTimeInMinutes,
		MaxWaitingTimeInMinutes: in.MaxWaitingTimeInMinutes,
		Enabled:                 true,
		ClientID:                in.ClientID,
		UnityID:                 in.UnityID,
		AdminID:                 in.AdminID,
	})
}

// GetByIDs returns the queues visible to the client. Ids belonging to other
// clients are silently dropped from the result.
func (s *Service) GetByIDs(ctx context.Context, queueIDs []string, clientID string) ([]Queue, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	if len(queueIDs) == 0 {
		return nil, fmt.Errorf("%w: queue id is required", httpx.ErrValidation)
	}
	return s.repo.GetByIDs(ctx, queueIDs, clientID)
}

// GetByID resolves a queue without tenant scoping. Reserved for trusted
// internal callers (the instance engine, background jobs); handlers always
// go through GetByIDs.
func (s *Service) GetByID(ctx context.Context, queueID string) (Queue, error) {
	if queueID == "" {
		return Queue{}, fmt.Errorf("%w: queue id is required", httpx.ErrValidation)
	}
	return s.repo.GetByID(ctx, queueID)
}

// Update applies a partial update. An empty payload is a validation error;
// a miss under the client scope is reported as NotFound whether the queue
// is absent or owned by someone else.
func (s *Service) Update(ctx context.Context, queueID, clientID string, patch UpdatePatch) (Queue, error) {
	if err := requireQueueAndClient(queueID, clientID); err != nil {
		return Queue{}, err
	}
	if patch.IsEmpty() {
		return Queue{}, fmt.Errorf("%w: payload is required", httpx.ErrValidation)
	}
	if patch.Type != nil && !ValidType(*patch.Type) {
		return Queue{}, fmt.Errorf("%w: unknown queue type %q", httpx.ErrValidation, string(*patch.Type))
	}
	return s.repo.Update(ctx, queueID, clientID, patch)
}

// Disable transitions enabled true→false. Disabling an already disabled or
// missing queue fails with the same NotFound.
func (s *Service) Disable(ctx context.Context, queueID, clientID string) (Queue, error) {
	if err := requireQueueAndClient(queueID, clientID); err != nil {
		return Queue{}, err
	}
	return s.repo.SetEnabled(ctx, queueID, clientID, false)
}

// Enable is the symmetric false→true transition.
func (s *Service) Enable(ctx context.Context, queueID, clientID string) (Queue, error) {
	if err := requireQueueAndClient(queueID, clientID); err != nil {
		return Queue{}, err
	}
	return s.repo.SetEnabled(ctx, queueID, clientID, true)
}

// ListByUnity lists every queue of a unity, enabled or not.
func (s *Service) ListByUnity(ctx context.Context, unityID string) ([]Queue, error) {
	if unityID == "" {
		return nil, fmt.Errorf("%w: unity id is required", httpx.ErrValidation)
	}
	return s.repo.ListByUnity(ctx, unityID)
}

func requireQueueAndClient(queueID, clientID string) error {
	if queueID == "" {
		return fmt.Errorf("%w: queue id is required", httpx.ErrValidation)
	}
	if clientID == "" {
		return fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	return nil
}
