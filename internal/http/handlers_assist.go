package http

import (
	"errors"
	"net/http"

	"agencydesk/internal/assist"
	"agencydesk/internal/log"
	"agencydesk/internal/services"
)

func (s *Server) handleDraftDescription(w http.ResponseWriter, r *http.Request) {
	var req DescriptionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	req = req.sanitized()
	if req.FormKey == "" {
		FieldError("formKey", "formKey is required").Write(w)
		return
	}

	text, err := s.assistant.DraftDescription(r.Context(), req.FormKey, req.Name, req.ClientID)
	if err != nil {
		s.assistError(w, r, err, "name", req.FormKey)
		return
	}
	NewJSONResponse().Body(map[string]string{"description": text}).Write(w)
}

func (s *Server) handleSuggestItems(w http.ResponseWriter, r *http.Request) {
	var req LineItemsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	req = req.sanitized()
	if req.FormKey == "" {
		FieldError("formKey", "formKey is required").Write(w)
		return
	}

	items, err := s.assistant.SuggestItems(r.Context(), req.FormKey, req.ProjectName, req.ProjectDescription)
	if err != nil {
		s.assistError(w, r, err, "projectName", req.FormKey)
		return
	}
	NewJSONResponse().Body(map[string]any{"items": nonNil(items)}).Write(w)
}

func (s *Server) handleAssistStatus(w http.ResponseWriter, r *http.Request) {
	key := queryValue(r, "formKey")
	if key == "" {
		FieldError("formKey", "formKey is required").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{
		"formKey": key,
		"status":  string(s.assistant.Status(key)),
	}).Write(w)
}

func (s *Server) assistError(w http.ResponseWriter, r *http.Request, err error, nameField, formKey string) {
	switch {
	case errors.Is(err, services.ErrProjectNameRequired):
		FieldError(nameField, err.Error()).Write(w)
	case errors.Is(err, assist.ErrBusy):
		ConflictError("a generation for this form is already in progress").Write(w)
	default:
		fields := log.NewFields()
		fields[log.FieldFormKey] = formKey
		log.LogError(r.Context(), log.FromContext(r.Context()), "Assist call failed", err,
			log.ComponentAssist, log.OpGenerate, fields)
		InternalServerError("assist call failed").Write(w)
	}
}
