package queues

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both a missing queue and a queue owned by another
// client; callers cannot tell existence from ownership.
var ErrNotFound = errors.New("queue not found")

const queueColumns = `id, name, type, min_waiting_time_minutes, max_waiting_time_minutes,
	current_waiting_time_minutes, is_active, start_queue_at, end_queue_at, max_users_in_queue,
	enabled, client_id, unity_id, admin_id, created_at, updated_at`

type Repository interface {
	GetByIDs(ctx context.Context, ids []string, clientID string) ([]Queue, error)
	GetByID(ctx context.Context, id string) (Queue, error)
	Create(ctx context.Context, queue Queue) (Queue, error)
	Update(ctx context.Context, queueID, clientID string, patch UpdatePatch) (Queue, error)
	SetEnabled(ctx context.Context, queueID, clientID string, enabled bool) (Queue, error)
	ListByUnity(ctx context.Context, unityID string) ([]Queue, error)
	ListEnabled(ctx context.Context) ([]Queue, error)
	SetCurrentWaitTime(ctx context.Context, queueID string, minutes int) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanQueue(row pgx.Row) (Queue, error) {
	var q Queue
	err := row.Scan(&q.ID, &q.Name, &q.Type, &q.MinWaitingTimeInMinutes, &q.MaxWaitingTimeInMinutes,
		&q.CurrentWaitingTimeInMinutes, &q.IsActive, &q.StartQueueAt, &q.EndQueueAt, &q.MaxUsersInQueue,
		&q.Enabled, &q.ClientID, &q.UnityID, &q.AdminID, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func collectQueues(rows pgx.Rows) ([]Queue, error) {
	defer rows.Close()
	var queues []Queue
	for rows.Next() {
		q, err := scanQueue(rows)
		if err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}
	return queues, rows.Err()
}

// GetByIDs returns the queues matching both id and client. Ids owned by
// another client are dropped from the result, not erred.
func (r *repository) GetByIDs(ctx context.Context, ids []string, clientID string) ([]Queue, error) {
	const query = `SELECT ` + queueColumns + ` FROM queues WHERE id = ANY($1) AND client_id = $2`
	rows, err := r.db.Query(ctx, query, ids, clientID)
	if err != nil {
		return nil, err
	}
	return collectQueues(rows)
}

func (r *repository) GetByID(ctx context.Context, id string) (Queue, error) {
	const query = `SELECT ` + queueColumns + ` FROM queues WHERE id = $1`
	q, err := scanQueue(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Queue{}, ErrNotFound
	}
	return q, err
}

func (r *repository) Create(ctx context.Context, queue Queue) (Queue, error) {
	const query = `
		INSERT INTO queues (id, name, type, min_waiting_time_minutes, max_waiting_time_minutes,
			current_waiting_time_minutes, is_active, start_queue_at, end_queue_at, max_users_in_queue,
			enabled, client_id, unity_id, admin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		queue.ID, queue.Name, queue.Type, queue.MinWaitingTimeInMinutes, queue.MaxWaitingTimeInMinutes,
		queue.CurrentWaitingTimeInMinutes, queue.IsActive, queue.StartQueueAt, queue.EndQueueAt,
		queue.MaxUsersInQueue, queue.Enabled, queue.ClientID, queue.UnityID, queue.AdminID,
	).Scan(&queue.CreatedAt, &queue.UpdatedAt)
	return queue, err
}

// Update applies the patch in a single conditional statement scoped by
// client, so a write against another tenant's queue reads as NotFound.
func (r *repository) Update(ctx context.Context, queueID, clientID string, patch UpdatePatch) (Queue, error) {
	set := ""
	args := []interface{}{queueID, clientID}
	add := func(column string, value interface{}) {
		args = append(args, value)
		if set != "" {
			set += ", "
		}
		set += column + " = $" + strconv.Itoa(len(args))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.StartQueueAt != nil {
		add("start_queue_at", *patch.StartQueueAt)
	}
	if patch.EndQueueAt != nil {
		add("end_queue_at", *patch.EndQueueAt)
	}
	if patch.MaxUsersInQueue != nil {
		add("max_users_in_queue", *patch.MaxUsersInQueue)
	}
	if patch.MinWaitingTimeInMinutes != nil {
		add("min_waiting_time_minutes", *patch.MinWaitingTimeInMinutes)
	}
	if patch.MaxWaitingTimeInMinutes != nil {
		add("max_waiting_time_minutes", *patch.MaxWaitingTimeInMinutes)
	}
	if patch.CurrentWaitingTimeInMinutes != nil {
		add("current_waiting_time_minutes", *patch.CurrentWaitingTimeInMinutes)
	}
	if patch.AdminID != nil {
		add("admin_id", *patch.AdminID)
	}

	query := `UPDATE queues SET ` + set + `, updated_at = now() WHERE id = $1 AND client_id = $2 RETURNING ` + queueColumns
	q, err := scanQueue(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Queue{}, ErrNotFound
	}
	return q, err
}

// SetEnabled performs the guarded transition. A queue already in the target
// state does not match the WHERE clause and reads as NotFound, on purpose.
func (r *repository) SetEnabled(ctx context.Context, queueID, clientID string, enabled bool) (Queue, error) {
	const query = `
		UPDATE queues SET enabled = $3, updated_at = now()
		WHERE id = $1 AND client_id = $2 AND enabled = NOT $3
		RETURNING ` + queueColumns
	q, err := scanQueue(r.db.QueryRow(ctx, query, queueID, clientID, enabled))
	if errors.Is(err, pgx.ErrNoRows) {
		return Queue{}, ErrNotFound
	}
	return q, err
}

func (r *repository) ListByUnity(ctx context.Context, unityID string) ([]Queue, error) {
	const query = `SELECT ` + queueColumns + ` FROM queues WHERE unity_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, unityID)
	if err != nil {
		return nil, err
	}
	return collectQueues(rows)
}

func (r *repository) ListEnabled(ctx context.Context) ([]Queue, error) {
	const query = `SELECT ` + queueColumns + ` FROM queues WHERE enabled ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectQueues(rows)
}

func (r *repository) SetCurrentWaitTime(ctx context.Context, queueID string, minutes int) error {
	const query = `UPDATE queues SET current_waiting_time_minutes = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, queueID, minutes)
	return err
}
