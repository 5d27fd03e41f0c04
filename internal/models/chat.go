package models

import "time"

const (
	ThreadActive   = "active"
	ThreadArchived = "archived"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Thread struct {
	ID            string
	UserID        string
	Title         string
	Status        string
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message belongs to a thread and is ordered by creation time
// within it. Deleting the thread cascades to its messages.
type Message struct {
	ID        string
	ThreadID  string
	UserID    string
	Role      string
	Content   string
	CreatedAt time.Time
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleSystem
}
