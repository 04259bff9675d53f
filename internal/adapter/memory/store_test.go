package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-assistant-bot/internal/domain"
)

func TestSessionReturnsSameSessionPerChat(t *testing.T) {
	s := NewStore(time.Hour)

	a := s.Session(1)
	a.AppendUserTurn("hello", a.Now())

	assert.Same(t, a, s.Session(1))
	assert.NotSame(t, a, s.Session(2))
}

func TestSessionExpires(t *testing.T) {
	s := NewStore(20 * time.Millisecond)

	first := s.Session(3)
	time.Sleep(40 * time.Millisecond)

	assert.NotSame(t, first, s.Session(3))
}

func TestExpiredSessionIsEvicted(t *testing.T) {
	s := NewStore(20 * time.Millisecond)

	var (
		mu      sync.Mutex
		evicted []*domain.Session
	)
	s.OnEvicted(func(sess *domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, sess)
	})

	first := s.Session(4)
	time.Sleep(40 * time.Millisecond)

	second := s.Session(4)
	assert.NotSame(t, first, second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, evicted, 1)
	assert.Same(t, first, evicted[0])
}

func TestNoExpiry(t *testing.T) {
	s := NewStore(0)
	first := s.Session(9)

	assert.Same(t, first, s.Session(9))
}
