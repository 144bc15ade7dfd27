package queueinstances

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/queueusers"
	"github.com/filaflow/filaflow/internal/shared"
)

var (
	// ErrUserAlreadyQueued fires when the user already sits in a today-dated
	// instance of any queue in the same unity.
	ErrUserAlreadyQueued = errors.New("user already in queue")
	// ErrUserNotInQueue fires on removal of a user absent from usersInQueue.
	ErrUserNotInQueue = errors.New("user not found in queue")
	// ErrQueueFull fires when the queue's maxUsersInQueue is reached.
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueDisabled blocks admissions into disabled queues.
	ErrQueueDisabled = errors.New("queue is disabled")
)

// QueueSource resolves queue configuration for the engine.
type QueueSource interface {
	GetByID(ctx context.Context, queueID string) (queues.Queue, error)
}

// UserSource resolves end users before they are admitted.
type UserSource interface {
	Get(ctx context.Context, id string) (queueusers.User, error)
}

// Service drives the per-day instance state machine: an instance is created
// lazily on the first admission of the day and stays open until midnight.
// Admission and removal serialize per unity-day through the repository's
// advisory lock.
type Service struct {
	repo   Repository
	queues QueueSource
	users  UserSource
	now    func() time.Time
}

func NewService(repo Repository, queueSource QueueSource, userSource UserSource) *Service {
	return &Service{repo: repo, queues: queueSource, users: userSource, now: time.Now}
}

// WithClock overrides the engine's time source, which decides where a
// calendar day starts and ends.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddInstance explicitly opens today's instance for a queue. Unlike the lazy
// admission path, a same-day duplicate is a hard conflict.
func (s *Service) AddInstance(ctx context.Context, queueID string) (Instance, error) {
	if queueID == "" {
		return Instance{}, fmt.Errorf("%w: queue id is required", httpx.ErrValidation)
	}
	queue, err := s.queues.GetByID(ctx, queueID)
	if err != nil {
		return Instance{}, err
	}

	day := shared.Today(s.now())
	if _, err := s.repo.FindForDay(ctx, queue.ID, day); err == nil {
		return Instance{}, fmt.Errorf("%w: queue %s", ErrInstanceAlreadyCreated, queue.ID)
	} else if !errors.Is(err, ErrInstanceNotFound) {
		return Instance{}, err
	}

	return s.repo.CreateInstance(ctx, s.freshInstance(queue.ID, day))
}

// GetOrCreateToday is the idempotent counterpart used by admission: a
// same-day instance is reused, never erred. A disabled queue is rejected
// before any row materializes. A creation race against the (queue_id, day)
// unique index falls back to re-reading the winner's row.
func (s *Service) GetOrCreateToday(ctx context.Context, queueID string) (Instance, error) {
	if queueID == "" {
		return Instance{}, fmt.Errorf("%w: queue id is required", httpx.ErrValidation)
	}
	queue, err := s.queues.GetByID(ctx, queueID)
	if err != nil {
		return Instance{}, err
	}
	if !queue.Enabled {
		return Instance{}, fmt.Errorf("%w: queue %s", ErrQueueDisabled, queue.ID)
	}

	day := shared.Today(s.now())
	inst, err := s.repo.FindForDay(ctx, queue.ID, day)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, ErrInstanceNotFound) {
		return Instance{}, err
	}

	inst, err = s.repo.CreateInstance(ctx, s.freshInstance(queue.ID, day))
	if errors.Is(err, ErrInstanceAlreadyCreated) {
		return s.repo.FindForDay(ctx, queue.ID, day)
	}
	return inst, err
}

// GetInstance resolves an instance by id.
func (s *Service) GetInstance(ctx context.Context, instanceID string) (Instance, error) {
	if instanceID == "" {
		return Instance{}, fmt.Errorf("%w: queue instance id is required", httpx.ErrValidation)
	}
	return s.repo.GetInstance(ctx, instanceID)
}

// AdmitUser appends userID to the instance's waiting list, enforcing the
// one-active-queue-per-unity-per-day invariant: if any today-dated sibling
// instance in the same unity already holds the user, admission conflicts
// regardless of which queue holds them. Returns the updated waiting list.
func (s *Service) AdmitUser(ctx context.Context, instanceID, userID string) ([]string, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: queue instance id is required", httpx.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", httpx.ErrValidation)
	}

	instance, err := s.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	queue, err := s.queues.GetByID(ctx, instance.QueueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	if !queue.Enabled {
		return nil, fmt.Errorf("%w: queue %s", ErrQueueDisabled, queue.ID)
	}

	day := shared.Today(s.now())
	var updated Instance
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.AcquireUnityDayLock(ctx, shared.UnityDayLockKey(queue.UnityID, day.Start)); err != nil {
			return err
		}
		current, err := tx.GetInstanceForUpdate(ctx, instanceID)
		if err != nil {
			return err
		}

		siblings, err := tx.ListForUnityDay(ctx, queue.UnityID, day)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if slices.Contains(sibling.UsersInQueue, userID) {
				// The conflict names the target instance even when a sibling
				// queue holds the user.
				return fmt.Errorf("%w: instance %s", ErrUserAlreadyQueued, instanceID)
			}
		}

		if queue.MaxUsersInQueue != nil && len(current.UsersInQueue) >= *queue.MaxUsersInQueue {
			return fmt.Errorf("%w: queue %s", ErrQueueFull, queue.ID)
		}

		updated, err = tx.UpdateMembership(ctx, instanceID, append(current.UsersInQueue, userID), current.AttendedUsers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated.UsersInQueue, nil
}

// RemoveUser takes userID out of the waiting list and appends it to
// attendedUsers. Attended users do not block a later re-admission.
func (s *Service) RemoveUser(ctx context.Context, instanceID, userID string) ([]string, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: queue instance id is required", httpx.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", httpx.ErrValidation)
	}

	var updated Instance
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetInstanceForUpdate(ctx, instanceID)
		if err != nil {
			return err
		}
		idx := slices.Index(current.UsersInQueue, userID)
		if idx < 0 {
			return fmt.Errorf("%w: user %s in instance %s", ErrUserNotInQueue, userID, instanceID)
		}

		waiting := slices.Delete(slices.Clone(current.UsersInQueue), idx, idx+1)
		updated, err = tx.UpdateMembership(ctx, instanceID, waiting, append(current.AttendedUsers, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated.UsersInQueue, nil
}

func (s *Service) freshInstance(queueID string, day shared.DayBounds) Instance {
	return Instance{
		ID:            uuid.NewString(),
		QueueID:       queueID,
		Date:          s.now(),
		Day:           day.Start,
		UsersInQueue:  []string{},
		AttendedUsers: []string{},
	}
}
