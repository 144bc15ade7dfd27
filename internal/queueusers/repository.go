package queueusers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User, passwordHash string) (User, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id string) (User, error) {
	const query = `SELECT id, name, email, created_at, updated_at FROM queue_users WHERE id = $1`
	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *repository) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	const query = `
		INSERT INTO queue_users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, passwordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	return user, err
}
