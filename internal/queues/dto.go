package queues

// CreateQueueInput carries the attributes of a new queue. ClientID always
// comes from the caller's identity, never from the request body.
type CreateQueueInput struct {
	Name                    string
	Type                    Type
	ClientID                string
	UnityID                 string
	AdminID                 *string
	StartQueueAt            *string
	EndQueueAt              *string
	MaxUsersInQueue         *int
	MinWaitingTimeInMinutes *int
	MaxWaitingTimeInMinutes *int
}

// UpdatePatch holds the mutable queue attributes; nil fields are left
// untouched. ClientID and UnityID are deliberately absent.
type UpdatePatch struct {
	Name                        *string
	Type                        *Type
	IsActive                    *bool
	StartQueueAt                *string
	EndQueueAt                  *string
	MaxUsersInQueue             *int
	MinWaitingTimeInMinutes     *int
	MaxWaitingTimeInMinutes     *int
	CurrentWaitingTimeInMinutes *int
	AdminID                     *string
}

// IsEmpty reports whether the patch carries no change at all.
func (p UpdatePatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.IsActive == nil &&
		p.StartQueueAt == nil && p.EndQueueAt == nil && p.MaxUsersInQueue == nil &&
		p.MinWaitingTimeInMinutes == nil && p.MaxWaitingTimeInMinutes == nil &&
		p.CurrentWaitingTimeInMinutes == nil && p.AdminID == nil
}
