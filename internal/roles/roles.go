// Package roles defines the closed admin role hierarchy and its rank checks.
package roles

import (
	"errors"
	"fmt"
)

// Role is an admin role within a client tenant.
type Role string

const (
	ClientOwner Role = "CLIENT_OWNER"
	ClientAdmin Role = "CLIENT_ADMIN"
	UnityAdmin  Role = "UNITY_ADMIN"
	QueueAdmin  Role = "QUEUE_ADMIN"
)

var (
	// ErrUnknownRole indicates a role outside the closed enum. This is a
	// configuration error, not a user mistake.
	ErrUnknownRole = errors.New("admin role is not defined")
	// ErrInsufficientRole indicates the acting role ranks below the minimum.
	ErrInsufficientRole = errors.New("method not allowed for admin role")
)

// Rank maps a role to its numeric hierarchy value. The switch is exhaustive
// over the enum so an unranked role can never compare as zero.
func Rank(r Role) (int, error) {
	switch r {
	case ClientOwner:
		return 40, nil
	case ClientAdmin:
		return 30, nil
	case UnityAdmin:
		return 20, nil
	case QueueAdmin:
		return 10, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
}

// RequireAtLeast fails when userRole ranks below minRole or when either role
// is not part of the enum.
func RequireAtLeast(userRole, minRole Role) error {
	userRank, err := Rank(userRole)
	if err != nil {
		return err
	}
	minRank, err := Rank(minRole)
	if err != nil {
		return fmt.Errorf("minimum requirement: %w", err)
	}
	if userRank < minRank {
		return fmt.Errorf("%w: %s requires at least %s", ErrInsufficientRole, userRole, minRole)
	}
	return nil
}

// Valid reports whether r belongs to the closed enum.
func Valid(r Role) bool {
	_, err := Rank(r)
	return err == nil
}
