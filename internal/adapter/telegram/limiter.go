package telegram

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// chatLimiter throttles each chat independently. A zero rate disables it.
type chatLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[int64]*rate.Limiter
}

func newChatLimiter(perMinute int) *chatLimiter {
	return &chatLimiter{
		perMin:   perMinute,
		limiters: make(map[int64]*rate.Limiter),
	}
}

func (l *chatLimiter) Allow(chatID int64) bool {
	if l.perMin <= 0 {
		return true
	}
	return l.get(chatID).Allow()
}

func (l *chatLimiter) get(chatID int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[chatID]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
	l.limiters[chatID] = limiter
	return limiter
}

// Forget drops the chat's limiter.
func (l *chatLimiter) Forget(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, chatID)
}
