package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02 15:04:05"

// Session is the conversation of one chat: its message history, the
// activity log and the active assistant mode. It is not safe for
// concurrent use; callers process one turn at a time per session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mode     Mode
	messages []Message
	activity []ActivityEntry
	snapshot string
	now      func() time.Time
}

func NewSession() *Session {
	return newSession(time.Now)
}

// NewSessionWithClock is NewSession with a fixed time source, for tests.
func NewSessionWithClock(now func() time.Time) *Session {
	return newSession(now)
}

func newSession(now func() time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now(),
		mode:      ModeInventory,
		now:       now,
	}
}

func (s *Session) Now() time.Time {
	return s.now()
}

// AppendUserTurn opens a turn: the question joins the history and the
// raw query is written to the activity log under the turn timestamp.
func (s *Session) AppendUserTurn(question string, ts time.Time) Message {
	msg := Message{Role: RoleUser, Content: question, Timestamp: ts}
	s.messages = append(s.messages, msg)
	s.logAt(ts, fmt.Sprintf("[%s] User query: %s", ts.Format(timestampLayout), question))
	return msg
}

// AppendAssistantTurn closes the turn opened at ts.
func (s *Session) AppendAssistantTurn(answer string, conf Confidence, ts time.Time) Message {
	msg := Message{Role: RoleAssistant, Content: answer, Timestamp: s.now()}
	s.messages = append(s.messages, msg)
	s.logAt(msg.Timestamp, fmt.Sprintf("[%s] AI response delivered (Accuracy: %s%%)",
		ts.Format(timestampLayout), FormatScore(conf.Score)))
	return msg
}

// Clear drops the message history. Mode and activity log survive.
func (s *Session) Clear() {
	s.messages = nil
	s.Log("Chat cleared")
}

// SetMode is intentionally not logged.
func (s *Session) SetMode(mode Mode) {
	s.mode = mode
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Log appends a control event to the activity log.
func (s *Session) Log(text string) {
	s.logAt(s.now(), text)
}

func (s *Session) logAt(ts time.Time, text string) {
	s.activity = append(s.activity, ActivityEntry{Timestamp: ts, Text: text})
}

func (s *Session) Messages() []Message {
	return append([]Message(nil), s.messages...)
}

func (s *Session) Activity() []ActivityEntry {
	return append([]ActivityEntry(nil), s.activity...)
}

// ActivityTail returns the n most recent entries, oldest first.
func (s *Session) ActivityTail(n int) []ActivityEntry {
	if n <= 0 {
		return nil
	}
	tail := s.activity
	if len(tail) > n {
		tail = tail[len(tail)-n:]
	}
	return append([]ActivityEntry(nil), tail...)
}

// AttachSnapshot records which record snapshot this session loaded.
func (s *Session) AttachSnapshot(id string) {
	s.snapshot = id
}

func (s *Session) Snapshot() string {
	return s.snapshot
}

// Turn is what the presentation layer receives for one answered question.
type Turn struct {
	User       Message
	Assistant  Message
	Confidence Confidence
	Records    int
	// Degraded is set when retrieval or composition fell back to a sentinel path.
	Degraded bool
	Activity []ActivityEntry
}
