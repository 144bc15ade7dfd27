package queueinstances

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filaflow/filaflow/internal/platform/db"
	"github.com/filaflow/filaflow/internal/shared"
)

var (
	// ErrInstanceNotFound indicates no instance exists under the given id or day.
	ErrInstanceNotFound = errors.New("queue instance not found")
	// ErrInstanceAlreadyCreated maps the (queue_id, day) uniqueness violation.
	ErrInstanceAlreadyCreated = errors.New("a queue instance is already created")
)

const instanceColumns = `id, queue_id, date, day, users_in_queue, attended_users, created_at, updated_at`

// Repository provides plain reads and instance creation; membership writes
// only happen inside a transaction through TxRepository.
type Repository interface {
	GetInstance(ctx context.Context, id string) (Instance, error)
	FindForDay(ctx context.Context, queueID string, day shared.DayBounds) (Instance, error)
	CreateInstance(ctx context.Context, instance Instance) (Instance, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the transaction-scoped view used by admission and removal.
// AcquireUnityDayLock serializes every admission for one unity-day; the lock
// is released with the transaction.
type TxRepository interface {
	AcquireUnityDayLock(ctx context.Context, key string) error
	GetInstanceForUpdate(ctx context.Context, id string) (Instance, error)
	ListForUnityDay(ctx context.Context, unityID string, day shared.DayBounds) ([]Instance, error)
	UpdateMembership(ctx context.Context, id string, usersInQueue, attendedUsers []string) (Instance, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanInstance(row pgx.Row) (Instance, error) {
	var inst Instance
	err := row.Scan(&inst.ID, &inst.QueueID, &inst.Date, &inst.Day, &inst.UsersInQueue, &inst.AttendedUsers, &inst.CreatedAt, &inst.UpdatedAt)
	return inst, err
}

func getInstance(ctx context.Context, q querier, id string) (Instance, error) {
	const query = `SELECT ` + instanceColumns + ` FROM queue_instances WHERE id = $1`
	inst, err := scanInstance(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Instance{}, ErrInstanceNotFound
	}
	return inst, err
}

func createInstance(ctx context.Context, q querier, instance Instance) (Instance, error) {
	const query = `
		INSERT INTO queue_instances (id, queue_id, date, day, users_in_queue, attended_users, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at`
	err := q.QueryRow(ctx, query, instance.ID, instance.QueueID, instance.Date, instance.Day, instance.UsersInQueue, instance.AttendedUsers).
		Scan(&instance.CreatedAt, &instance.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Instance{}, ErrInstanceAlreadyCreated
	}
	return instance, err
}

func (r *repository) GetInstance(ctx context.Context, id string) (Instance, error) {
	return getInstance(ctx, r.pool, id)
}

// FindForDay matches on the day column the uniqueness constraint is keyed on,
// never by picking the newest row and comparing after the fact. The day value
// and the constraint therefore always bucket by the same calendar.
func (r *repository) FindForDay(ctx context.Context, queueID string, day shared.DayBounds) (Instance, error) {
	const query = `
		SELECT ` + instanceColumns + ` FROM queue_instances
		WHERE queue_id = $1 AND day = $2`
	inst, err := scanInstance(r.pool.QueryRow(ctx, query, queueID, day.Start))
	if errors.Is(err, pgx.ErrNoRows) {
		return Instance{}, ErrInstanceNotFound
	}
	return inst, err
}

func (r *repository) CreateInstance(ctx context.Context, instance Instance) (Instance, error) {
	return createInstance(ctx, r.pool, instance)
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) AcquireUnityDayLock(ctx context.Context, key string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}

func (t *txRepository) GetInstanceForUpdate(ctx context.Context, id string) (Instance, error) {
	const query = `SELECT ` + instanceColumns + ` FROM queue_instances WHERE id = $1 FOR UPDATE`
	inst, err := scanInstance(t.tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Instance{}, ErrInstanceNotFound
	}
	return inst, err
}

// ListForUnityDay fetches every today-dated instance across the unity's
// queues, which is the scope of the fairness check.
func (t *txRepository) ListForUnityDay(ctx context.Context, unityID string, day shared.DayBounds) ([]Instance, error) {
	const query = `
		SELECT qi.id, qi.queue_id, qi.date, qi.day, qi.users_in_queue, qi.attended_users, qi.created_at, qi.updated_at
		FROM queue_instances qi
		JOIN queues q ON q.id = qi.queue_id
		WHERE q.unity_id = $1 AND qi.day = $2
		ORDER BY qi.created_at`
	rows, err := t.tx.Query(ctx, query, unityID, day.Start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (t *txRepository) UpdateMembership(ctx context.Context, id string, usersInQueue, attendedUsers []string) (Instance, error) {
	const query = `
		UPDATE queue_instances SET users_in_queue = $2, attended_users = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + instanceColumns
	inst, err := scanInstance(t.tx.QueryRow(ctx, query, id, usersInQueue, attendedUsers))
	if errors.Is(err, pgx.ErrNoRows) {
		return Instance{}, ErrInstanceNotFound
	}
	return inst, err
}
