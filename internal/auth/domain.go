package auth

import (
	"time"

	"github.com/filaflow/filaflow/internal/roles"
)

// Account is any principal able to authenticate: a client admin or an end
// user. End-user accounts carry an empty role and no scopes.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         roles.Role
	ClientID     string
	UnityIDs     []string
	QueueIDs     []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
