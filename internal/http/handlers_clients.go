package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agencydesk/internal/core"
)

func (s *Server) handleListClients(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(nonNil(s.workspace.Clients())).Write(w)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var form core.ClientForm
	if err := DecodeJSON(w, r, &form); err != nil {
		decodeError(err).Write(w)
		return
	}
	form = sanitizeClientForm(form)
	if err := form.Validate(); err != nil {
		validationError(err).Write(w)
		return
	}

	c := s.workspace.CreateClient(r.Context(), form)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/clients/"+c.ID).
		Body(c).
		Write(w)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form core.ClientForm
	if err := DecodeJSON(w, r, &form); err != nil {
		decodeError(err).Write(w)
		return
	}
	form = sanitizeClientForm(form)
	if err := form.Validate(); err != nil {
		validationError(err).Write(w)
		return
	}

	c, ok := s.workspace.UpdateClient(r.Context(), id, form)
	if !ok {
		NotFoundError("client not found").Write(w)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

// handleDeleteClient leaves projects that reference the client untouched.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if !s.workspace.DeleteClient(r.Context(), chi.URLParam(r, "id")) {
		NotFoundError("client not found").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
