package memory

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"warehouse-assistant-bot/internal/domain"
)

// Store keeps one live session per chat. A session idle for longer than
// the ttl is forgotten and the chat starts over.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl / 2
	if ttl == cache.NoExpiration || cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{
		cache: cache.New(ttl, cleanup),
		now:   time.Now,
	}
}

// OnEvicted registers fn to run for every session that expires.
func (s *Store) OnEvicted(fn func(*domain.Session)) {
	s.cache.OnEvicted(func(_ string, x interface{}) {
		if sess, ok := x.(*domain.Session); ok {
			fn(sess)
		}
	})
}

func (s *Store) Session(chatID int64) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(chatID, 10)
	sess, ok := s.get(key)
	if !ok {
		// an expired entry would be overwritten below without eviction
		s.cache.DeleteExpired()
		sess = domain.NewSessionWithClock(s.now)
	}
	// re-set on every access so the expiry slides
	s.cache.SetDefault(key, sess)
	return sess
}

func (s *Store) get(key string) (*domain.Session, bool) {
	x, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	sess, ok := x.(*domain.Session)
	return sess, ok
}
