package events

import "time"

const (
	LeaveDecidedTopic     = "leave.request.decided.v1"
	LeaveDecidedEventType = "leave.decided"
)

type LeaveDecidedEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       string    `json:"leave_id"`
	RequesterID   string    `json:"requester_id"`
	DecidedBy     string    `json:"decided_by"`
	Status        string    `json:"status"`
	DaysRequested int       `json:"days_requested"`
	OccurredAt    time.Time `json:"occurred_at"`
}
