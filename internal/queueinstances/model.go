package queueinstances

import "time"

// Instance materializes a queue for one calendar day. UsersInQueue keeps
// insertion order, which downstream consumers read as FIFO serving order;
// AttendedUsers collects ids removed after being served. Day is the calendar
// day bucket the uniqueness constraint is keyed on; it is always derived from
// Date using the server's local timezone, so the constraint and the day-range
// queries agree on where a day starts.
type Instance struct {
	ID            string    `json:"id"`
	QueueID       string    `json:"queueId"`
	Date          time.Time `json:"date"`
	Day           time.Time `json:"-"`
	UsersInQueue  []string  `json:"usersInQueue"`
	AttendedUsers []string  `json:"attendedUsers"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
