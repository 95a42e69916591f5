package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"agencydesk/internal/core"
	"agencydesk/internal/seed"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("versions = %d, %d", v1, v2)
	}
}

func TestReplaceAllAndLoadState(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	empty, err := repo.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("IsEmpty = %v, %v", empty, err)
	}

	want, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.ReplaceAll(ctx, want); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if len(got.Clients) != len(want.Clients) || len(got.Projects) != len(want.Projects) || len(got.Invoices) != len(want.Invoices) {
		t.Fatalf("sizes differ: %+v", got)
	}
	for i := range want.Clients {
		if got.Clients[i] != want.Clients[i] {
			t.Fatalf("client %d = %+v, want %+v", i, got.Clients[i], want.Clients[i])
		}
	}
	for i := range want.Projects {
		g, w := got.Projects[i], want.Projects[i]
		if g.ID != w.ID || g.Status != w.Status || !g.Budget.Equal(w.Budget) || len(g.Tasks) != len(w.Tasks) {
			t.Fatalf("project %d = %+v, want %+v", i, g, w)
		}
	}
	for i := range want.Invoices {
		if !core.InvoiceTotal(got.Invoices[i]).Equal(core.InvoiceTotal(want.Invoices[i])) {
			t.Fatalf("invoice %s total mismatch", want.Invoices[i].ID)
		}
		if len(got.Invoices[i].Items) != len(want.Invoices[i].Items) {
			t.Fatalf("invoice %s items mismatch", want.Invoices[i].ID)
		}
	}
	if !core.PaidRevenue(got.Invoices).Equal(core.PaidRevenue(want.Invoices)) {
		t.Fatal("paid revenue changed across a round trip")
	}
}

func TestSaveClient_InsertsAtFrontAndUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, id := range []string{"a", "b"} {
		if err := repo.SaveClient(ctx, core.Client{ID: id, CompanyName: "Co " + id}); err != nil {
			t.Fatalf("SaveClient: %v", err)
		}
	}
	if err := repo.SaveClient(ctx, core.Client{ID: "a", CompanyName: "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	st, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(st.Clients) != 2 || st.Clients[0].ID != "b" || st.Clients[1].CompanyName != "Renamed" {
		t.Fatalf("unexpected clients: %+v", st.Clients)
	}

	if err := repo.DeleteClient(ctx, "a"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if err := repo.DeleteClient(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestSaveProject(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p := core.Project{
		ID:        "p1",
		Name:      "Site",
		ClientID:  "gone",
		Status:    core.ProjectActive,
		Budget:    decimal.RequireFromString("1500.25"),
		StartDate: "2025-01-02",
		Tasks:     []string{"design", "build"},
	}
	if err := repo.SaveProject(ctx, p); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	p.Status = core.ProjectOnHold
	p.Tasks = nil
	if err := repo.SaveProject(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	st, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	got := st.Projects[0]
	if got.Status != core.ProjectOnHold || !got.Budget.Equal(p.Budget) || len(got.Tasks) != 0 || got.ClientID != "gone" {
		t.Fatalf("unexpected project: %+v", got)
	}

	if err := repo.SaveProject(ctx, core.Project{ID: "bad", Status: "Archived"}); err == nil {
		t.Fatal("expected CHECK constraint failure for unknown status")
	}
}

func TestActivityLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	for i, action := range []string{"create", "update", "delete"} {
		if _, err := repo.AppendActivity(ctx, Activity{
			Kind: "client", Action: action, EntityID: "c1", Version: uint64(i + 1), OccurredAt: at,
		}); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	list, err := repo.ListActivity(ctx, 2)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(list) != 2 || list[0].Action != "delete" || list[0].Version != 3 {
		t.Fatalf("unexpected activity: %+v", list)
	}
	if !list[0].OccurredAt.Equal(at) {
		t.Fatalf("time = %v", list[0].OccurredAt)
	}
}
