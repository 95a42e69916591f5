package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"agencydesk/internal/core"
	"agencydesk/internal/store"
)

// Rows are ordered by position descending, so the newest insert comes first.

// IsEmpty reports whether no client, project or invoice has been stored yet.
func (r *SQLiteRepository) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM clients) + (SELECT COUNT(*) FROM projects) + (SELECT COUNT(*) FROM invoices)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return n == 0, nil
}

// LoadState rebuilds the in-memory workspace from the database.
func (r *SQLiteRepository) LoadState(ctx context.Context) (store.State, error) {
	var st store.State
	var err error
	if st.Clients, err = r.loadClients(ctx); err != nil {
		return store.State{}, err
	}
	if st.Projects, err = r.loadProjects(ctx); err != nil {
		return store.State{}, err
	}
	if st.Invoices, err = r.loadInvoices(ctx); err != nil {
		return store.State{}, err
	}
	return st, nil
}

func (r *SQLiteRepository) loadClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_name, pic_name, phone, email, address, sub_district, city
		FROM clients ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		var c core.Client
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.PICName, &c.Phone, &c.Email, &c.Address, &c.SubDistrict, &c.City); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, client_id, description, status, budget, start_date, end_date, tasks
		FROM projects ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		var (
			p             core.Project
			budget, tasks string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.Description, &p.Status, &budget, &p.StartDate, &p.EndDate, &tasks); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if p.Budget, err = decimal.NewFromString(budget); err != nil {
			return nil, fmt.Errorf("project %s budget: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(tasks), &p.Tasks); err != nil {
			return nil, fmt.Errorf("project %s tasks: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, invoice_number, date, due_date, status, notes
		FROM invoices ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	var out []core.Invoice
	byID := map[string]int{}
	for rows.Next() {
		var inv core.Invoice
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Date, &inv.DueDate, &inv.Status, &inv.Notes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Items = []core.InvoiceItem{}
		byID[inv.ID] = len(out)
		out = append(out, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.db.QueryContext(ctx, `
		SELECT invoice_id, id, description, quantity, rate
		FROM invoice_items ORDER BY invoice_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var (
			invoiceID      string
			it             core.InvoiceItem
			quantity, rate string
		)
		if err := items.Scan(&invoiceID, &it.ID, &it.Description, &quantity, &rate); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		if it.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("item %s quantity: %w", it.ID, err)
		}
		if it.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("item %s rate: %w", it.ID, err)
		}
		if i, ok := byID[invoiceID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, items.Err()
}

// SaveClient inserts a new client at the front or updates an existing one in place.
func (r *SQLiteRepository) SaveClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, company_name, pic_name, phone, email, address, sub_district, city, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM clients))
		ON CONFLICT(id) DO UPDATE SET
			company_name = excluded.company_name,
			pic_name     = excluded.pic_name,
			phone        = excluded.phone,
			email        = excluded.email,
			address      = excluded.address,
			sub_district = excluded.sub_district,
			city         = excluded.city`,
		c.ID, c.CompanyName, c.PICName, c.Phone, c.Email, c.Address, c.SubDistrict, c.City)
	if err != nil {
		return fmt.Errorf("save client %s: %w", c.ID, err)
	}
	return nil
}

// DeleteClient removes the client row only; projects keep their client_id.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete client %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveProject inserts a new project at the front or updates an existing one in place.
func (r *SQLiteRepository) SaveProject(ctx context.Context, p core.Project) error {
	tasks, err := encodeTasks(p.Tasks)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, client_id, description, status, budget, start_date, end_date, tasks, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM projects))
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			client_id   = excluded.client_id,
			description = excluded.description,
			status      = excluded.status,
			budget      = excluded.budget,
			start_date  = excluded.start_date,
			end_date    = excluded.end_date,
			tasks       = excluded.tasks`,
		p.ID, p.Name, p.ClientID, p.Description, string(p.Status), p.Budget.String(), p.StartDate, p.EndDate, tasks)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

// ReplaceAll overwrites every table with st, preserving its order.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, st store.State) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"invoice_items", "invoices", "projects", "clients"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for i, c := range st.Clients {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO clients (id, company_name, pic_name, phone, email, address, sub_district, city, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, c.CompanyName, c.PICName, c.Phone, c.Email, c.Address, c.SubDistrict, c.City, len(st.Clients)-i); err != nil {
				return fmt.Errorf("insert client %s: %w", c.ID, err)
			}
		}
		for i, p := range st.Projects {
			tasks, err := encodeTasks(p.Tasks)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO projects (id, name, client_id, description, status, budget, start_date, end_date, tasks, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.Name, p.ClientID, p.Description, string(p.Status), p.Budget.String(), p.StartDate, p.EndDate, tasks, len(st.Projects)-i); err != nil {
				return fmt.Errorf("insert project %s: %w", p.ID, err)
			}
		}
		for i, inv := range st.Invoices {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO invoices (id, project_id, invoice_number, date, due_date, status, notes, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				inv.ID, inv.ProjectID, inv.InvoiceNumber, inv.Date, inv.DueDate, string(inv.Status), inv.Notes, len(st.Invoices)-i); err != nil {
				return fmt.Errorf("insert invoice %s: %w", inv.ID, err)
			}
			for seq, it := range inv.Items {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO invoice_items (invoice_id, id, description, quantity, rate, seq)
					VALUES (?, ?, ?, ?, ?, ?)`,
					inv.ID, it.ID, it.Description, it.Quantity.String(), it.Rate.String(), seq); err != nil {
					return fmt.Errorf("insert item %s/%s: %w", inv.ID, it.ID, err)
				}
			}
		}
		return nil
	})
}

func encodeTasks(tasks []string) (string, error) {
	if tasks == nil {
		tasks = []string{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(b), nil
}
