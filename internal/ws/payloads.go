package ws

import "time"

// Event is pushed to every subscriber of an owner.
type Event struct {
	Type   string    `json:"type"`
	Owner  string    `json:"owner,omitempty"`
	Reason string    `json:"reason,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
	At     time.Time `json:"at"`
}

// Change reasons carried in tasks_changed events.
const (
	ReasonCreated = "created"
	ReasonUpdated = "updated"
	ReasonDeleted = "deleted"
	ReasonChat    = "chat"
)
