package models

import "time"

const (
	ActionCreated         = "created"
	ActionUpdated         = "updated"
	ActionCompleted       = "completed"
	ActionDeleted         = "deleted"
	ActionStatusChanged   = "status_changed"
	ActionPriorityChanged = "priority_changed"
)

// ActivityChange carries the before/after values for the
// status_changed and priority_changed actions. Other actions
// have no payload.
type ActivityChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Activity is an append-only audit record. It is never mutated
// and is removed only in bulk together with its parent task.
type Activity struct {
	ID        string
	TaskID    string
	UserID    string
	Action    string
	Change    *ActivityChange
	CreatedAt time.Time
}
