package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agencydesk/internal/core"
)

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(nonNil(s.workspace.Projects())).Write(w)
}

// handleCreateProject defaults a blank client to the first client, a blank
// status to Planning and a blank start date to today.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var form core.ProjectForm
	if err := DecodeJSON(w, r, &form); err != nil {
		decodeError(err).Write(w)
		return
	}
	form = sanitizeProjectForm(form)
	if err := form.Validate(); err != nil {
		validationError(err).Write(w)
		return
	}

	p := s.workspace.CreateProject(r.Context(), form)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/projects/"+p.ID).
		Body(p).
		Write(w)
}

// handleUpdateProject replaces every attribute of the project. A blank status
// or start date keeps the stored value.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form core.ProjectForm
	if err := DecodeJSON(w, r, &form); err != nil {
		decodeError(err).Write(w)
		return
	}
	form = sanitizeProjectForm(form)
	if err := form.Validate(); err != nil {
		validationError(err).Write(w)
		return
	}

	current, ok := s.findProject(id)
	if !ok {
		NotFoundError("project not found").Write(w)
		return
	}
	if form.Status == "" {
		form.Status = current.Status
	}
	if form.StartDate == "" {
		form.StartDate = current.StartDate
	}

	p, ok := s.workspace.UpdateProject(r.Context(), form.Project(id, time.Now()))
	if !ok {
		NotFoundError("project not found").Write(w)
		return
	}
	NewJSONResponse().Body(p).Write(w)
}

func (s *Server) findProject(id string) (core.Project, bool) {
	for _, p := range s.workspace.Projects() {
		if p.ID == id {
			return p, true
		}
	}
	return core.Project{}, false
}
