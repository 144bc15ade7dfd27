package unities

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the unity does not exist.
var ErrNotFound = errors.New("unity not found")

type Repository interface {
	Get(ctx context.Context, id string) (Unity, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, unity Unity) (Unity, error)
	ListByClient(ctx context.Context, clientID string) ([]Unity, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id string) (Unity, error) {
	const query = `SELECT id, name, address, client_id, created_at, updated_at FROM unities WHERE id = $1`
	var u Unity
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Address, &u.ClientID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unity{}, ErrNotFound
	}
	return u, err
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM unities WHERE id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, unity Unity) (Unity, error) {
	const query = `
		INSERT INTO unities (id, name, address, client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, unity.ID, unity.Name, unity.Address, unity.ClientID).Scan(&unity.CreatedAt, &unity.UpdatedAt)
	return unity, err
}

func (r *repository) ListByClient(ctx context.Context, clientID string) ([]Unity, error) {
	const query = `SELECT id, name, address, client_id, created_at, updated_at FROM unities WHERE client_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unities []Unity
	for rows.Next() {
		var u Unity
		if err := rows.Scan(&u.ID, &u.Name, &u.Address, &u.ClientID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		unities = append(unities, u)
	}
	return unities, rows.Err()
}
