package services

import (
	"context"
	"strconv"
	"time"

	"agencydesk/internal/amqp"
	"agencydesk/internal/cache"
	"agencydesk/internal/core"
	"agencydesk/internal/log"
	"agencydesk/internal/store"
)

// Repository is the durable copy of the workspace. Optional.
type Repository interface {
	SaveClient(ctx context.Context, c core.Client) error
	DeleteClient(ctx context.Context, id string) error
	SaveProject(ctx context.Context, p core.Project) error
}

// Publisher announces committed mutations. Optional.
type Publisher interface {
	PublishEntityEvent(ctx context.Context, ev amqp.EntityEvent) error
}

// Hooks receive notifications used for metrics.
type Hooks struct {
	Mutation func(entity, action string)
	Summary  func(core.DashboardSummary)
}

// WorkspaceService applies mutations to the in-memory store, then writes them
// through to the repository and publishes an event. Write-through and publish
// failures are logged; the in-memory mutation stands.
type WorkspaceService struct {
	store     *store.Store
	repo      Repository
	publisher Publisher
	summaries *cache.LRUCache[core.DashboardSummary]
	hooks     Hooks
	logger    *log.Logger
}

type Option func(*WorkspaceService)

func WithRepository(r Repository) Option {
	return func(s *WorkspaceService) { s.repo = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *WorkspaceService) { s.publisher = p }
}

func WithHooks(h Hooks) Option {
	return func(s *WorkspaceService) { s.hooks = h }
}

func WithLogger(l *log.Logger) Option {
	return func(s *WorkspaceService) { s.logger = l }
}

// WithSummaryTTL sets how long a computed dashboard summary is kept.
func WithSummaryTTL(ttl time.Duration) Option {
	return func(s *WorkspaceService) { s.summaries = cache.NewLRUCache[core.DashboardSummary](4, ttl) }
}

func NewWorkspaceService(st *store.Store, opts ...Option) *WorkspaceService {
	s := &WorkspaceService{store: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	if s.summaries == nil {
		s.summaries = cache.NewLRUCache[core.DashboardSummary](4, 5*time.Minute)
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)
	return s
}

// SummaryCache exposes the summary cache for periodic sweeping.
func (s *WorkspaceService) SummaryCache() cache.Cleaner {
	return s.summaries
}

// Snapshot returns the current state and its version.
func (s *WorkspaceService) Snapshot() (store.State, uint64) {
	return s.store.Snapshot()
}

func (s *WorkspaceService) Clients() []core.Client {
	st, _ := s.store.Snapshot()
	return st.Clients
}

func (s *WorkspaceService) Projects() []core.Project {
	st, _ := s.store.Snapshot()
	return st.Projects
}

// Invoices returns every invoice with its resolved names and total.
func (s *WorkspaceService) Invoices() []core.InvoiceView {
	st, _ := s.store.Snapshot()
	return core.InvoiceViews(st.Index(), st.Invoices)
}

// CompanyName returns the company name for clientID, or "" when unknown.
func (s *WorkspaceService) CompanyName(clientID string) string {
	st, _ := s.store.Snapshot()
	if c, ok := st.Index().Client(clientID); ok {
		return c.CompanyName
	}
	return ""
}

// Dashboard returns the summary for the current state version, computing it at most once per version.
func (s *WorkspaceService) Dashboard() core.DashboardSummary {
	st, version := s.store.Snapshot()
	key := strconv.FormatUint(version, 10)
	if sum, ok := s.summaries.Get(key); ok {
		return sum
	}
	sum := core.Summarize(st.Clients, st.Projects, st.Invoices)
	s.summaries.Set(key, sum)
	if s.hooks.Summary != nil {
		s.hooks.Summary(sum)
	}
	return sum
}

func (s *WorkspaceService) CreateClient(ctx context.Context, f core.ClientForm) core.Client {
	c, version := s.store.CreateClient(f)
	s.afterMutation(ctx, log.EntityClient, amqp.ActionCreate, c.ID, version, func(ctx context.Context) error {
		return s.repo.SaveClient(ctx, c)
	})
	return c
}

// UpdateClient reports false, leaving the state untouched, when id is unknown.
func (s *WorkspaceService) UpdateClient(ctx context.Context, id string, f core.ClientForm) (core.Client, bool) {
	c, version, ok := s.store.UpdateClient(id, f)
	if !ok {
		return core.Client{}, false
	}
	s.afterMutation(ctx, log.EntityClient, amqp.ActionUpdate, c.ID, version, func(ctx context.Context) error {
		return s.repo.SaveClient(ctx, c)
	})
	return c, true
}

// DeleteClient removes the client only. Projects keep the dangling client id.
func (s *WorkspaceService) DeleteClient(ctx context.Context, id string) bool {
	version, ok := s.store.DeleteClient(id)
	if !ok {
		return false
	}
	s.afterMutation(ctx, log.EntityClient, amqp.ActionDelete, id, version, func(ctx context.Context) error {
		return s.repo.DeleteClient(ctx, id)
	})
	return true
}

// CreateProject mints a project. A blank client id defaults to the first client.
func (s *WorkspaceService) CreateProject(ctx context.Context, f core.ProjectForm) core.Project {
	p, version := s.store.CreateProject(f)
	s.afterMutation(ctx, log.EntityProject, amqp.ActionCreate, p.ID, version, func(ctx context.Context) error {
		return s.repo.SaveProject(ctx, p)
	})
	return p
}

// UpdateProject replaces the project with p.ID. Unknown ids report false.
func (s *WorkspaceService) UpdateProject(ctx context.Context, p core.Project) (core.Project, bool) {
	p, version, ok := s.store.UpdateProject(p)
	if !ok {
		return core.Project{}, false
	}
	s.afterMutation(ctx, log.EntityProject, amqp.ActionUpdate, p.ID, version, func(ctx context.Context) error {
		return s.repo.SaveProject(ctx, p)
	})
	return p, true
}

func (s *WorkspaceService) afterMutation(ctx context.Context, entity, action, id string, version uint64, persist func(context.Context) error) {
	fields := log.NewFields().WithEntity(entity, id, version).WithOperation(action)
	s.logger.InfoContext(ctx, "Workspace mutated", fields.ToSlice()...)
	if s.hooks.Mutation != nil {
		s.hooks.Mutation(entity, action)
	}

	if s.repo != nil {
		if err := persist(ctx); err != nil {
			log.LogError(ctx, s.logger, "Failed to persist mutation", err, log.ComponentStorage, action,
				log.NewFields().WithEntity(entity, id, version))
		}
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntityEvent(ctx, amqp.NewEntityEvent(entity, action, id, version)); err != nil {
		log.LogError(ctx, s.logger, "Failed to publish entity event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithEntity(entity, id, version))
	}
}
