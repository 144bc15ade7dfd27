package queues

import "time"

// Type classifies how a queue serves its users.
type Type string

const (
	TypeGeneral     Type = "GENERAL"
	TypePriority    Type = "PRIORITY"
	TypeAppointment Type = "APPOINTMENT"
)

// ValidType reports whether t belongs to the closed enum.
func ValidType(t Type) bool {
	switch t {
	case TypeGeneral, TypePriority, TypeAppointment:
		return true
	default:
		return false
	}
}

// Queue is the persistent configuration of a service line. ClientID and
// UnityID are immutable once set; a queue is never physically deleted, only
// disabled.
type Queue struct {
	ID                          string    `json:"id"`
	Name                        string    `json:"name"`
	Type                        Type      `json:"type"`
	MinWaitingTimeInMinutes     *int      `json:"minWaitingTimeInMinutes,omitempty"`
	MaxWaitingTimeInMinutes     *int      `json:"maxWaitingTimeInMinutes,omitempty"`
	CurrentWaitingTimeInMinutes *int      `json:"currentWaitingTimeInMinutes,omitempty"`
	IsActive                    bool      `json:"isActive"`
	StartQueueAt                *string   `json:"startQueueAt,omitempty"`
	EndQueueAt                  *string   `json:"endQueueAt,omitempty"`
	MaxUsersInQueue             *int      `json:"maxUsersInQueue,omitempty"`
	Enabled                     bool      `json:"enabled"`
	ClientID                    string    `json:"clientId"`
	UnityID                     string    `json:"unityId"`
	AdminID                     *string   `json:"adminId,omitempty"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}
