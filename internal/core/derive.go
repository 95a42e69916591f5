package core

import "github.com/shopspring/decimal"

// Sentinels returned when a foreign-key lookup finds nothing.
const (
	UnknownProject = "Unknown Project"
	UnknownClient  = "Unknown Client"
)

// LineTotal returns quantity × rate.
func LineTotal(item InvoiceItem) decimal.Decimal {
	return item.Quantity.Mul(item.Rate)
}

// InvoiceTotal sums the line totals of inv. An invoice without items totals zero.
func InvoiceTotal(inv Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(LineTotal(it))
	}
	return total
}

// PaidRevenue sums the totals of invoices whose status is exactly Paid.
func PaidRevenue(invoices []Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != InvoicePaid {
			continue
		}
		total = total.Add(InvoiceTotal(inv))
	}
	return total
}

// Index provides id lookups over the three collections.
// Build it once per state; it does not observe later changes.
type Index struct {
	clients  map[string]Client
	projects map[string]Project
}

// NewIndex builds lookup maps for the given collections.
func NewIndex(clients []Client, projects []Project) Index {
	idx := Index{
		clients:  make(map[string]Client, len(clients)),
		projects: make(map[string]Project, len(projects)),
	}
	for _, c := range clients {
		idx.clients[c.ID] = c
	}
	for _, p := range projects {
		idx.projects[p.ID] = p
	}
	return idx
}

func (idx Index) Client(id string) (Client, bool) {
	c, ok := idx.clients[id]
	return c, ok
}

func (idx Index) Project(id string) (Project, bool) {
	p, ok := idx.projects[id]
	return p, ok
}

// ProjectName resolves a project id to its name, or UnknownProject.
func (idx Index) ProjectName(projectID string) string {
	if p, ok := idx.projects[projectID]; ok && p.Name != "" {
		return p.Name
	}
	return UnknownProject
}

// ClientName resolves the owning client of a project in two hops.
// Either hop missing, or a blank company name, yields UnknownClient.
func (idx Index) ClientName(projectID string) string {
	p, ok := idx.projects[projectID]
	if !ok {
		return UnknownClient
	}
	if c, ok := idx.clients[p.ClientID]; ok && c.CompanyName != "" {
		return c.CompanyName
	}
	return UnknownClient
}

// ResolveProjectName is the one-shot form of Index.ProjectName.
func ResolveProjectName(projectID string, projects []Project) string {
	return NewIndex(nil, projects).ProjectName(projectID)
}

// ResolveClientName is the one-shot form of Index.ClientName.
func ResolveClientName(projectID string, projects []Project, clients []Client) string {
	return NewIndex(clients, projects).ClientName(projectID)
}
