package store

import (
	"sync"
	"time"

	"agencydesk/internal/core"
)

// Store is a concurrency-safe holder of the current State.
// Each effective mutation bumps Version.
type Store struct {
	mu      sync.Mutex
	state   State
	version uint64
	env     Env
}

type Option func(*Store)

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.env.IDs = g }
}

// WithClock overrides time.Now for create-time defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.env.Now = now }
}

func New(initial State, opts ...Option) *Store {
	s := &Store{state: initial.Clone(), env: Env{IDs: UUIDGenerator{}, Now: time.Now}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state and its version.
func (s *Store) Snapshot() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.version
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) CreateClient(f core.ClientForm) (core.Client, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, c := CreateClient(s.state, f, s.env)
	s.commit(next)
	return c, s.version
}

func (s *Store) UpdateClient(id string, f core.ClientForm) (core.Client, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, c, ok := UpdateClient(s.state, id, f)
	if ok {
		s.commit(next)
	}
	return c, s.version, ok
}

func (s *Store) DeleteClient(id string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := DeleteClient(s.state, id)
	if ok {
		s.commit(next)
	}
	return s.version, ok
}

func (s *Store) CreateProject(f core.ProjectForm) (core.Project, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, p := CreateProject(s.state, f, s.env)
	s.commit(next)
	return p, s.version
}

func (s *Store) UpdateProject(p core.Project) (core.Project, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, p, ok := UpdateProject(s.state, p)
	if ok {
		s.commit(next)
	}
	return p, s.version, ok
}

func (s *Store) commit(next State) {
	s.state = next
	s.version++
}
