package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"agencydesk/internal/amqp"
	"agencydesk/internal/assist"
	"agencydesk/internal/core"
	"agencydesk/internal/store"
)

type fakeRepo struct {
	mu       sync.Mutex
	clients  map[string]core.Client
	projects map[string]core.Project
	deleted  []string
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: map[string]core.Client{}, projects: map[string]core.Project{}}
}

func (r *fakeRepo) SaveClient(_ context.Context, c core.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.clients[c.ID] = c
	return nil
}

func (r *fakeRepo) DeleteClient(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.clients, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) SaveProject(_ context.Context, p core.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.projects[p.ID] = p
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.EntityEvent
	err    error
}

func (p *fakePublisher) PublishEntityEvent(_ context.Context, ev amqp.EntityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func seeded() store.State {
	return store.State{
		Clients: []core.Client{{ID: "c1", CompanyName: "Acme"}},
		Projects: []core.Project{{
			ID: "p1", Name: "Site", ClientID: "c1", Status: core.ProjectActive, Budget: decimal.NewFromInt(500),
		}},
		Invoices: []core.Invoice{{
			ID: "i1", ProjectID: "p1", Status: core.InvoicePaid,
			Items: []core.InvoiceItem{{ID: "a", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(150)}},
		}},
	}
}

func newService(t *testing.T, opts ...Option) (*WorkspaceService, *fakeRepo, *fakePublisher) {
	t.Helper()
	repo, pub := newFakeRepo(), &fakePublisher{}
	st := store.New(seeded(), store.WithIDGenerator(&store.SequenceGenerator{Prefix: "id-"}))
	opts = append([]Option{WithRepository(repo), WithPublisher(pub)}, opts...)
	return NewWorkspaceService(st, opts...), repo, pub
}

func TestCreateClient_WritesThroughAndPublishes(t *testing.T) {
	svc, repo, pub := newService(t)
	c := svc.CreateClient(context.Background(), core.ClientForm{CompanyName: "Beta", PICName: "Bo", Phone: "1"})

	if c.ID == "" {
		t.Fatal("expected minted id")
	}
	if got := svc.Clients(); got[0].ID != c.ID {
		t.Fatalf("new client should be first, got %+v", got)
	}
	if _, ok := repo.clients[c.ID]; !ok {
		t.Fatal("client not written through")
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %+v", pub.events)
	}
	ev := pub.events[0]
	if ev.Kind != "client" || ev.Action != amqp.ActionCreate || ev.ID != c.ID || ev.Version != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestMutationMissIsSilent(t *testing.T) {
	svc, repo, pub := newService(t)
	_, before := svc.Snapshot()

	if _, ok := svc.UpdateClient(context.Background(), "nope", core.ClientForm{CompanyName: "x"}); ok {
		t.Fatal("update of unknown id reported success")
	}
	if svc.DeleteClient(context.Background(), "nope") {
		t.Fatal("delete of unknown id reported success")
	}
	if _, ok := svc.UpdateProject(context.Background(), core.Project{ID: "nope"}); ok {
		t.Fatal("project update of unknown id reported success")
	}
	if _, after := svc.Snapshot(); after != before {
		t.Fatalf("version moved from %d to %d", before, after)
	}
	if len(pub.events) != 0 || len(repo.clients) != 0 {
		t.Fatal("no side effects expected on a miss")
	}
}

func TestDeleteClient_LeavesProjectsDangling(t *testing.T) {
	svc, repo, pub := newService(t)
	if !svc.DeleteClient(context.Background(), "c1") {
		t.Fatal("delete failed")
	}
	if len(svc.Projects()) != 1 {
		t.Fatal("projects must not cascade")
	}
	views := svc.Invoices()
	if views[0].ClientName != core.UnknownClient || views[0].ProjectName != "Site" {
		t.Fatalf("unexpected view %+v", views[0])
	}
	if len(repo.deleted) != 1 || pub.events[0].Action != amqp.ActionDelete {
		t.Fatal("delete not propagated")
	}
}

func TestSideEffectFailuresDoNotFailMutation(t *testing.T) {
	svc, repo, pub := newService(t)
	repo.err = errors.New("disk full")
	pub.err = errors.New("broker down")

	p := svc.CreateProject(context.Background(), core.ProjectForm{Name: "Logo"})
	if p.ID == "" || svc.Projects()[0].ID != p.ID {
		t.Fatal("mutation should stand despite side-effect failures")
	}
}

func TestCreateProject_Defaults(t *testing.T) {
	today := time.Date(2025, 2, 3, 23, 0, 0, 0, time.UTC)
	st := store.New(seeded(), store.WithClock(func() time.Time { return today }))
	svc := NewWorkspaceService(st)

	p := svc.CreateProject(context.Background(), core.ProjectForm{Name: "Logo"})
	if p.ClientID != "c1" {
		t.Fatalf("client should default to first client, got %q", p.ClientID)
	}
	if p.Status != core.ProjectPlanning || p.StartDate != "2025-02-03" {
		t.Fatalf("unexpected defaults %+v", p)
	}

	twin := svc.CreateProject(context.Background(), core.ProjectForm{Name: "Logo"})
	if twin.ID == p.ID {
		t.Fatal("identical forms must produce distinct ids")
	}
}

func TestDashboard_CachedPerVersion(t *testing.T) {
	var computed int
	svc, _, _ := newService(t, WithHooks(Hooks{Summary: func(core.DashboardSummary) { computed++ }}))

	first := svc.Dashboard()
	svc.Dashboard()
	if computed != 1 {
		t.Fatalf("summary computed %d times, want 1", computed)
	}
	if !first.PaidRevenue.Equal(decimal.NewFromInt(300)) || first.ClientCount != 1 {
		t.Fatalf("unexpected summary %+v", first)
	}

	svc.CreateClient(context.Background(), core.ClientForm{CompanyName: "New"})
	if got := svc.Dashboard(); got.ClientCount != 2 || computed != 2 {
		t.Fatalf("summary not refreshed after mutation: %+v (computed %d)", got, computed)
	}
}

func TestMutationHook(t *testing.T) {
	var seen []string
	svc, _, _ := newService(t, WithHooks(Hooks{Mutation: func(e, a string) { seen = append(seen, e+"/"+a) }}))
	svc.CreateClient(context.Background(), core.ClientForm{CompanyName: "x"})
	svc.UpdateProject(context.Background(), core.Project{ID: "p1", Name: "Site 2", Status: core.ProjectCompleted})
	if len(seen) != 2 || seen[0] != "client/create" || seen[1] != "project/update" {
		t.Fatalf("hooks = %v", seen)
	}
}

func TestAssistService(t *testing.T) {
	svc, _, _ := newService(t)
	block := make(chan struct{})
	var prompt string
	model := assist.ModelFunc(func(ctx context.Context, req assist.Request) (string, error) {
		prompt = req.Prompt
		<-block
		return "Drafted.", nil
	})
	as := NewAssistService(assist.New(model), assist.NewGuard(8, time.Minute), svc)

	if _, err := as.DraftDescription(context.Background(), "f", " ", "c1"); !errors.Is(err, ErrProjectNameRequired) {
		t.Fatalf("err = %v", err)
	}

	done := make(chan string)
	go func() {
		text, _ := as.DraftDescription(context.Background(), "f", "Site", "c1")
		done <- text
	}()
	deadline := time.Now().Add(time.Second)
	for as.Status("f") != assist.StatusInFlight {
		if time.Now().After(deadline) {
			t.Fatal("call never went in flight")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := as.SuggestItems(context.Background(), "f", "Site", ""); !errors.Is(err, assist.ErrBusy) {
		t.Fatalf("second call err = %v, want ErrBusy", err)
	}
	close(block)
	if text := <-done; text != "Drafted." {
		t.Fatalf("text = %q", text)
	}
	if as.Status("f") != assist.StatusDone {
		t.Fatalf("status = %s", as.Status("f"))
	}
	if want := `for client "Acme"`; !strings.Contains(prompt, want) {
		t.Fatalf("prompt %q lacks %q", prompt, want)
	}

	as.DraftDescription(context.Background(), "g", "Site", "missing")
	if want := `for client "Client"`; !strings.Contains(prompt, want) {
		t.Fatalf("prompt %q lacks %q", prompt, want)
	}
}
