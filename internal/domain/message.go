package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// ActivityEntry is one line of the session audit trail.
type ActivityEntry struct {
	Timestamp time.Time
	Text      string
}
