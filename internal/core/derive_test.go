package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(q, r string) InvoiceItem {
	return InvoiceItem{ID: "it", Quantity: d(q), Rate: d(r)}
}

func TestInvoiceTotal(t *testing.T) {
	cases := []struct {
		name  string
		items []InvoiceItem
		want  string
	}{
		{"empty", nil, "0"},
		{"single", []InvoiceItem{item("2", "150")}, "300"},
		{"fractional", []InvoiceItem{item("1.5", "80.10"), item("3", "0.333")}, "121.149"},
		{"zero quantity", []InvoiceItem{item("0", "999"), item("1", "10")}, "10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := Invoice{Items: tc.items}
			got := InvoiceTotal(inv)
			if !got.Equal(d(tc.want)) {
				t.Fatalf("InvoiceTotal = %s, want %s", got, tc.want)
			}
			manual := decimal.Zero
			for _, it := range tc.items {
				manual = manual.Add(it.Quantity.Mul(it.Rate))
			}
			if !got.Equal(manual) {
				t.Fatalf("InvoiceTotal = %s, line sum = %s", got, manual)
			}
		})
	}
}

func TestPaidRevenueCountsOnlyPaid(t *testing.T) {
	invoices := []Invoice{
		{ID: "a", Status: InvoicePaid, Items: []InvoiceItem{item("2", "150")}},
		{ID: "b", Status: InvoiceSent, Items: []InvoiceItem{item("1", "1000")}},
		{ID: "c", Status: InvoiceDraft, Items: []InvoiceItem{item("1", "50")}},
		{ID: "d", Status: InvoicePaid, Items: []InvoiceItem{item("4", "25")}},
		{ID: "e", Status: "paid", Items: []InvoiceItem{item("1", "7")}},
	}
	base := PaidRevenue(invoices)
	if !base.Equal(d("400")) {
		t.Fatalf("PaidRevenue = %s, want 400", base)
	}

	for _, s := range []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoiceOverdue} {
		changed := append([]Invoice(nil), invoices...)
		changed[1].Status = s
		changed[2].Status = s
		if got := PaidRevenue(changed); !got.Equal(base) {
			t.Fatalf("changing non-paid statuses to %s moved revenue to %s", s, got)
		}
	}

	if got := PaidRevenue(nil); !got.IsZero() {
		t.Fatalf("PaidRevenue(nil) = %s", got)
	}
}

func TestResolveNamesScenario(t *testing.T) {
	clients := []Client{{ID: "c1", CompanyName: "Acme"}}
	projects := []Project{{ID: "p1", Name: "Website", ClientID: "c1", Budget: d("500")}}
	inv := Invoice{ID: "i1", ProjectID: "p1", Status: InvoicePaid, Items: []InvoiceItem{item("2", "150")}}

	if got := InvoiceTotal(inv); !got.Equal(d("300")) {
		t.Fatalf("InvoiceTotal = %s", got)
	}
	if got := PaidRevenue([]Invoice{inv}); !got.Equal(d("300")) {
		t.Fatalf("PaidRevenue = %s", got)
	}
	if got := ResolveClientName("p1", projects, clients); got != "Acme" {
		t.Fatalf("ResolveClientName = %q", got)
	}
	if got := ResolveProjectName("p1", projects); got != "Website" {
		t.Fatalf("ResolveProjectName = %q", got)
	}
}

func TestResolveNamesFallback(t *testing.T) {
	clients := []Client{{ID: "c1", CompanyName: "Acme"}, {ID: "c2"}}
	projects := []Project{
		{ID: "p1", Name: "Website", ClientID: "c1"},
		{ID: "p2", Name: "Orphan", ClientID: "gone"},
		{ID: "p3", Name: "Blank client", ClientID: "c2"},
		{ID: "p4", ClientID: "c1"},
	}
	idx := NewIndex(clients, projects)

	cases := []struct {
		projectID   string
		wantProject string
		wantClient  string
	}{
		{"p1", "Website", "Acme"},
		{"missing", UnknownProject, UnknownClient},
		{"", UnknownProject, UnknownClient},
		{"p2", "Orphan", UnknownClient},
		{"p3", "Blank client", UnknownClient},
		{"p4", UnknownProject, "Acme"},
	}
	for _, tc := range cases {
		if got := idx.ProjectName(tc.projectID); got != tc.wantProject {
			t.Errorf("ProjectName(%q) = %q, want %q", tc.projectID, got, tc.wantProject)
		}
		if got := idx.ClientName(tc.projectID); got != tc.wantClient {
			t.Errorf("ClientName(%q) = %q, want %q", tc.projectID, got, tc.wantClient)
		}
	}
}

func TestSummarize(t *testing.T) {
	clients := []Client{{ID: "c1"}, {ID: "c2"}}
	projects := []Project{
		{ID: "p1", Status: ProjectActive},
		{ID: "p2", Status: ProjectActive},
		{ID: "p3", Status: ProjectOnHold},
	}
	invoices := []Invoice{
		{ID: "i1", Status: InvoicePaid, Items: []InvoiceItem{item("1", "100")}},
		{ID: "i2", Status: InvoiceOverdue, Items: []InvoiceItem{item("1", "50")}},
	}

	sum := Summarize(clients, projects, invoices)
	if sum.ClientCount != 2 || sum.ProjectCount != 3 || sum.InvoiceCount != 2 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if !sum.PaidRevenue.Equal(d("100")) || sum.IncomeTotal != "$0.100k" {
		t.Fatalf("PaidRevenue = %s, IncomeTotal = %q", sum.PaidRevenue, sum.IncomeTotal)
	}
	if len(sum.ProjectsByStatus) != 4 || sum.ProjectsByStatus[1] != (StatusCount{Status: "Active", Count: 2}) {
		t.Fatalf("unexpected project buckets: %+v", sum.ProjectsByStatus)
	}
	if sum.ProjectsByStatus[0].Count != 0 {
		t.Fatalf("Planning bucket should be empty: %+v", sum.ProjectsByStatus)
	}
	if len(sum.InvoicesByStatus) != 4 || sum.InvoicesByStatus[3] != (StatusCount{Status: "Overdue", Count: 1}) {
		t.Fatalf("unexpected invoice buckets: %+v", sum.InvoicesByStatus)
	}
}

func TestInvoiceViews(t *testing.T) {
	idx := NewIndex(
		[]Client{{ID: "c1", CompanyName: "Acme"}},
		[]Project{{ID: "p1", Name: "Website", ClientID: "c1"}},
	)
	views := InvoiceViews(idx, []Invoice{
		{ID: "i1", ProjectID: "p1", Items: []InvoiceItem{item("2", "150")}},
		{ID: "i2", ProjectID: "nope"},
	})
	if len(views) != 2 {
		t.Fatalf("got %d views", len(views))
	}
	if views[0].ProjectName != "Website" || views[0].ClientName != "Acme" || !views[0].Total.Equal(d("300")) || views[0].TotalLabel != "$300.00" {
		t.Fatalf("unexpected first view: %+v", views[0])
	}
	if views[1].ProjectName != UnknownProject || views[1].ClientName != UnknownClient || !views[1].Total.IsZero() {
		t.Fatalf("unexpected second view: %+v", views[1])
	}
}
