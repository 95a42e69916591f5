package core

import "github.com/shopspring/decimal"

// StatusCount is a count keyed by a status label.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DashboardSummary is the compact overview rendered on the dashboard.
type DashboardSummary struct {
	PaidRevenue      decimal.Decimal `json:"paidRevenue"`
	IncomeTotal      string          `json:"incomeTotal"`
	ClientCount      int             `json:"clientCount"`
	ProjectCount     int             `json:"projectCount"`
	InvoiceCount     int             `json:"invoiceCount"`
	ProjectsByStatus []StatusCount   `json:"projectsByStatus"`
	InvoicesByStatus []StatusCount   `json:"invoicesByStatus"`
}

// InvoiceView is an invoice with its derived values resolved for listing.
type InvoiceView struct {
	Invoice
	ProjectName string          `json:"projectName"`
	ClientName  string          `json:"clientName"`
	Total       decimal.Decimal `json:"total"`
	TotalLabel  string          `json:"totalLabel"`
}

// Summarize computes the dashboard overview. Status buckets are always present
// in declaration order, including empty ones.
func Summarize(clients []Client, projects []Project, invoices []Invoice) DashboardSummary {
	byProject := make(map[ProjectStatus]int, 4)
	for _, p := range projects {
		byProject[p.Status]++
	}
	byInvoice := make(map[InvoiceStatus]int, 4)
	for _, inv := range invoices {
		byInvoice[inv.Status]++
	}

	paid := PaidRevenue(invoices)
	sum := DashboardSummary{
		PaidRevenue:  paid,
		IncomeTotal:  FormatThousands(paid),
		ClientCount:  len(clients),
		ProjectCount: len(projects),
		InvoiceCount: len(invoices),
	}
	for _, s := range ProjectStatuses() {
		sum.ProjectsByStatus = append(sum.ProjectsByStatus, StatusCount{Status: string(s), Count: byProject[s]})
	}
	for _, s := range InvoiceStatuses() {
		sum.InvoicesByStatus = append(sum.InvoicesByStatus, StatusCount{Status: string(s), Count: byInvoice[s]})
	}
	return sum
}

// InvoiceViews resolves names and totals for every invoice, preserving order.
func InvoiceViews(idx Index, invoices []Invoice) []InvoiceView {
	out := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		total := InvoiceTotal(inv)
		out = append(out, InvoiceView{
			Invoice:     inv,
			ProjectName: idx.ProjectName(inv.ProjectID),
			ClientName:  idx.ClientName(inv.ProjectID),
			Total:       total,
			TotalLabel:  FormatCurrency(total),
		})
	}
	return out
}
