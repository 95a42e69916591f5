package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agencydesk/internal/assist"
	"agencydesk/internal/core"
	"agencydesk/internal/log"
	"agencydesk/internal/middleware/ratelimit"
	"agencydesk/internal/middleware/security"
	"agencydesk/internal/middleware/trace"
)

// Workspace is the read and write surface the handlers need.
type Workspace interface {
	Clients() []core.Client
	Projects() []core.Project
	Invoices() []core.InvoiceView
	Dashboard() core.DashboardSummary

	CreateClient(ctx context.Context, f core.ClientForm) core.Client
	UpdateClient(ctx context.Context, id string, f core.ClientForm) (core.Client, bool)
	DeleteClient(ctx context.Context, id string) bool
	CreateProject(ctx context.Context, f core.ProjectForm) core.Project
	UpdateProject(ctx context.Context, p core.Project) (core.Project, bool)
}

// Assistant drafts text for forms, one call per form key at a time.
type Assistant interface {
	DraftDescription(ctx context.Context, formKey, projectName, clientID string) (string, error)
	SuggestItems(ctx context.Context, formKey, projectName, projectDescription string) ([]core.LineItemSuggestion, error)
	Status(formKey string) assist.Status
}

// Config holds the server wiring that is not a domain dependency.
type Config struct {
	Addr               string
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	WriteTimeout       time.Duration

	// Ready reports whether the backing stores answer; nil means always ready.
	Ready func(context.Context) error
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	// Observe receives one latency sample per request.
	Observe trace.Observer
}

type Server struct {
	http.Server

	workspace Workspace
	assistant Assistant
	logger    *log.Logger
	ready     func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires the router. Call Shutdown to stop the limiter's cleanup goroutine.
func NewServer(cfg Config, ws Workspace, as Assistant) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.DefaultConfig())
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		workspace: ws,
		assistant: as,
		logger:    cfg.Logger.WithComponent(log.ComponentHTTP),
		ready:     cfg.Ready,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:  detector,
		started:   time.Now(),
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(cfg Config) http.Handler {
	tracer := trace.NewMiddleware(cfg.Logger, s.detector.ExtractClientIP, cfg.Observe)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r := chi.NewRouter()
	r.Use(tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(headers.Middleware)
	r.Use(s.detector.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/clients", s.handleListClients)
		r.Get("/projects", s.handleListProjects)
		r.Get("/invoices", s.handleListInvoices)
		r.Get("/assist/status", s.handleAssistStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))

			r.Post("/clients", s.handleCreateClient)
			r.Put("/clients/{id}", s.handleUpdateClient)
			r.Delete("/clients/{id}", s.handleDeleteClient)
			r.Post("/projects", s.handleCreateProject)
			r.Put("/projects/{id}", s.handleUpdateProject)
			r.Post("/assist/project-description", s.handleDraftDescription)
			r.Post("/assist/invoice-items", s.handleSuggestItems)
		})
	})
	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully stops the server and the limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
