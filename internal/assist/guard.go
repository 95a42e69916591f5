package assist

import (
	"errors"
	"sync"
	"time"

	"agencydesk/internal/cache"
)

// ErrBusy is returned when a call for the same form key is still in flight.
var ErrBusy = errors.New("assist: request already in flight")

// Status is the per-form lifecycle of an assist call.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusInFlight Status = "in-flight"
	StatusDone     Status = "done"
)

// Guard refuses a second call for a form key while the first is outstanding.
// Completed keys are remembered for a while and then fall back to idle.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	done     *cache.LRUCache[time.Time]
	now      func() time.Time
}

// NewGuard remembers up to maxDone completed keys for retain each.
func NewGuard(maxDone int, retain time.Duration, opts ...cache.Option) *Guard {
	g := &Guard{
		inFlight: make(map[string]struct{}),
		done:     cache.NewLRUCache[time.Time](maxDone, retain, opts...),
		now:      time.Now,
	}
	return g
}

// Begin marks key in flight. The returned release func moves it to done and
// must be called exactly once.
func (g *Guard) Begin(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, ErrBusy
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.done.Set(key, g.now())
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) Status(key string) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return StatusInFlight
	}
	if _, ok := g.done.Get(key); ok {
		return StatusDone
	}
	return StatusIdle
}

// Cache exposes the completed-key cache so it can be swept by a cache.Manager.
func (g *Guard) Cache() cache.Cleaner {
	return g.done
}
