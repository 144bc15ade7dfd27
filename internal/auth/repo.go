package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filaflow/filaflow/internal/roles"
)

// ErrAccountNotFound indicates no account exists for the given email.
var ErrAccountNotFound = errors.New("account not found")

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail resolves an account by email. Admin accounts win over end-user
// accounts when both exist for the same address.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const adminQuery = `
		SELECT id, name, email, password_hash, role, client_id, unity_ids, queue_ids, is_active, created_at, updated_at
		FROM admins WHERE email = $1`

	var acc Account
	var role string
	err := r.pool.QueryRow(ctx, adminQuery, email).Scan(
		&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &role,
		&acc.ClientID, &acc.UnityIDs, &acc.QueueIDs, &acc.IsActive,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err == nil {
		acc.Role = roles.Role(role)
		return &acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	const userQuery = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM queue_users WHERE email = $1`

	err = r.pool.QueryRow(ctx, userQuery, email).Scan(
		&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	acc.IsActive = true
	return &acc, nil
}
