// Package store holds the entity collections and the operations that change them.
//
// State is a value: every mutation takes the current State and returns the
// next one, leaving the input untouched. Store wraps a State for callers that
// need a shared, concurrently accessed holder.
package store

import (
	"slices"
	"time"

	"agencydesk/internal/core"
)

// State is the full set of entity collections. Order is display order,
// newest first.
type State struct {
	Clients  []core.Client
	Projects []core.Project
	Invoices []core.Invoice
}

// Index builds id lookups for s.
func (s State) Index() core.Index {
	return core.NewIndex(s.Clients, s.Projects)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Clients:  slices.Clone(s.Clients),
		Projects: make([]core.Project, len(s.Projects)),
		Invoices: make([]core.Invoice, len(s.Invoices)),
	}
	for i, p := range s.Projects {
		out.Projects[i] = cloneProject(p)
	}
	for i, inv := range s.Invoices {
		inv.Items = slices.Clone(inv.Items)
		out.Invoices[i] = inv
	}
	return out
}

func cloneProject(p core.Project) core.Project {
	p.Tasks = slices.Clone(p.Tasks)
	return p
}

// Env carries the non-deterministic inputs of create operations.
type Env struct {
	IDs IDGenerator
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) newID() string {
	if e.IDs == nil {
		return UUIDGenerator{}.NewID()
	}
	return e.IDs.NewID()
}

// CreateClient mints an id and puts the new client first.
func CreateClient(s State, f core.ClientForm, env Env) (State, core.Client) {
	c := f.Client(env.newID())
	next := s
	next.Clients = prepend(s.Clients, c)
	return next, c
}

// UpdateClient replaces the attributes of the client with the given id.
// The id itself never changes. An unknown id leaves the state as it was and
// reports false.
func UpdateClient(s State, id string, f core.ClientForm) (State, core.Client, bool) {
	i := slices.IndexFunc(s.Clients, func(c core.Client) bool { return c.ID == id })
	if i < 0 {
		return s, core.Client{}, false
	}
	c := f.Client(id)
	next := s
	next.Clients = slices.Clone(s.Clients)
	next.Clients[i] = c
	return next, c, true
}

// DeleteClient removes the client with the given id. Projects pointing at it
// are left alone and will resolve to core.UnknownClient.
func DeleteClient(s State, id string) (State, bool) {
	if !slices.ContainsFunc(s.Clients, func(c core.Client) bool { return c.ID == id }) {
		return s, false
	}
	next := s
	next.Clients = slices.DeleteFunc(slices.Clone(s.Clients), func(c core.Client) bool { return c.ID == id })
	return next, true
}

// CreateProject mints an id, applies the form defaults and puts the project first.
// A blank client id defaults to the first client of s.
func CreateProject(s State, f core.ProjectForm, env Env) (State, core.Project) {
	if f.ClientID == "" && len(s.Clients) > 0 {
		f.ClientID = s.Clients[0].ID
	}
	p := f.Project(env.newID(), env.now())
	next := s
	next.Projects = prepend(s.Projects, p)
	return next, p
}

// UpdateProject replaces the project sharing p's id. Unknown ids are a no-op.
func UpdateProject(s State, p core.Project) (State, core.Project, bool) {
	i := slices.IndexFunc(s.Projects, func(cur core.Project) bool { return cur.ID == p.ID })
	if i < 0 {
		return s, core.Project{}, false
	}
	p = cloneProject(p)
	next := s
	next.Projects = slices.Clone(s.Projects)
	next.Projects[i] = p
	return next, p, true
}

func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}
