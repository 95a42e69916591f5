// Package seed loads the initial workspace from YAML.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"agencydesk/internal/core"
	"agencydesk/internal/store"
)

//go:embed default.yaml
var defaultSeed []byte

type (
	file struct {
		Clients  []core.Client `yaml:"clients"`
		Projects []project     `yaml:"projects"`
		Invoices []invoice     `yaml:"invoices"`
	}

	project struct {
		ID          string             `yaml:"id"`
		Name        string             `yaml:"name"`
		ClientID    string             `yaml:"clientId"`
		Description string             `yaml:"description"`
		Status      core.ProjectStatus `yaml:"status"`
		Budget      amount             `yaml:"budget"`
		StartDate   string             `yaml:"startDate"`
		EndDate     string             `yaml:"endDate"`
		Tasks       []string           `yaml:"tasks"`
	}

	invoice struct {
		ID            string             `yaml:"id"`
		ProjectID     string             `yaml:"projectId"`
		InvoiceNumber string             `yaml:"invoiceNumber"`
		Date          string             `yaml:"date"`
		DueDate       string             `yaml:"dueDate"`
		Status        core.InvoiceStatus `yaml:"status"`
		Notes         string             `yaml:"notes"`
		Items         []item             `yaml:"items"`
	}

	item struct {
		ID          string `yaml:"id"`
		Description string `yaml:"description"`
		Quantity    amount `yaml:"quantity"`
		Rate        amount `yaml:"rate"`
	}

	// amount decodes quoted or bare YAML numbers without float rounding.
	// A leading "$" and a comma decimal separator are accepted.
	amount struct{ decimal.Decimal }
)

func (a *amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", n.Line)
	}
	d, err := core.ParseAmount(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", n.Line, n.Value, err)
	}
	a.Decimal = d
	return nil
}

// Default returns the embedded demo workspace.
func Default() (store.State, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file. An empty path yields the embedded default.
func Load(path string) (store.State, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return store.State{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document and checks statuses and id uniqueness.
// Foreign keys are not checked.
func Parse(data []byte) (store.State, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return store.State{}, fmt.Errorf("parse seed: %w", err)
	}

	var st store.State
	seen := map[string]bool{}
	for _, c := range f.Clients {
		if err := unique(seen, "client", c.ID); err != nil {
			return store.State{}, err
		}
		st.Clients = append(st.Clients, c)
	}
	for _, p := range f.Projects {
		if err := unique(seen, "project", p.ID); err != nil {
			return store.State{}, err
		}
		if p.Status == "" {
			p.Status = core.ProjectPlanning
		}
		if !p.Status.IsValid() {
			return store.State{}, fmt.Errorf("project %s: %w %q", p.ID, core.ErrInvalidStatus, p.Status)
		}
		st.Projects = append(st.Projects, core.Project{
			ID:          p.ID,
			Name:        p.Name,
			ClientID:    p.ClientID,
			Description: p.Description,
			Status:      p.Status,
			Budget:      p.Budget.Decimal,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			Tasks:       p.Tasks,
		})
	}
	for _, inv := range f.Invoices {
		if err := unique(seen, "invoice", inv.ID); err != nil {
			return store.State{}, err
		}
		if !inv.Status.IsValid() {
			return store.State{}, fmt.Errorf("invoice %s: %w %q", inv.ID, core.ErrInvalidStatus, inv.Status)
		}
		out := core.Invoice{
			ID:            inv.ID,
			ProjectID:     inv.ProjectID,
			InvoiceNumber: inv.InvoiceNumber,
			Date:          inv.Date,
			DueDate:       inv.DueDate,
			Status:        inv.Status,
			Notes:         inv.Notes,
			Items:         make([]core.InvoiceItem, 0, len(inv.Items)),
		}
		itemIDs := map[string]bool{}
		for _, it := range inv.Items {
			if itemIDs[it.ID] {
				return store.State{}, fmt.Errorf("invoice %s: duplicate item id %q", inv.ID, it.ID)
			}
			itemIDs[it.ID] = true
			out.Items = append(out.Items, core.InvoiceItem{
				ID:          it.ID,
				Description: it.Description,
				Quantity:    it.Quantity.Decimal,
				Rate:        it.Rate.Decimal,
			})
		}
		st.Invoices = append(st.Invoices, out)
	}
	return st, nil
}

func unique(seen map[string]bool, kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s without id", kind)
	}
	key := kind + "/" + id
	if seen[key] {
		return fmt.Errorf("duplicate %s id %q", kind, id)
	}
	seen[key] = true
	return nil
}
