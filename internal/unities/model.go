package unities

import "time"

// Unity is a physical or organizational unit of a client, the ownership
// scope for queues and for the daily admission invariant.
type Unity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	ClientID  string    `json:"clientId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
