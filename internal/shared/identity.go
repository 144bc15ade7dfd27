package shared

import "github.com/filaflow/filaflow/internal/roles"

// Identity is the signed actor attached to every authenticated request.
// Admins carry a role plus the unity/queue scopes they manage; end users
// carry an empty role and no scopes.
type Identity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Role     roles.Role `json:"role,omitempty"`
	ClientID string     `json:"clientId,omitempty"`
	UnityIDs []string   `json:"unityIds,omitempty"`
	QueueIDs []string   `json:"queueIds,omitempty"`
}

// IsAdmin reports whether the identity carries any admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role != ""
}
