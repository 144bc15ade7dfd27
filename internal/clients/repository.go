package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the client does not exist.
var ErrNotFound = errors.New("client not found")

type Repository interface {
	Get(ctx context.Context, id string) (Client, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, client Client) (Client, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id string) (Client, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM clients WHERE id = $1`
	var c Client
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	const query = `
		INSERT INTO clients (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, client.ID, client.Name, client.Email).Scan(&client.CreatedAt, &client.UpdatedAt)
	return client, err
}
