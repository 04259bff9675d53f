package domain

// SessionStore hands out the live session of a chat, creating it on first use.
type SessionStore interface {
	Session(chatID int64) *Session
}
