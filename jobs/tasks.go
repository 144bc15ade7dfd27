package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskWaitTimeRecalc refreshes a queue's current waiting-time estimate.
	TaskWaitTimeRecalc = "queue:waittime:recalc"
)

// WaitTimeRecalcPayload identifies the queue to refresh. An empty QueueID
// means every enabled queue, which is what the cron schedule sends.
type WaitTimeRecalcPayload struct {
	QueueID      string    `json:"queue_id,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewWaitTimeRecalcTask constructs an Asynq task for a wait-time refresh.
func NewWaitTimeRecalcTask(queueID string, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(WaitTimeRecalcPayload{QueueID: queueID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWaitTimeRecalc, body, asynq.Queue(QueueDefault)), nil
}
