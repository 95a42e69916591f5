package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"agencydesk/internal/core"
	"agencydesk/internal/log"
)

const readyTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the backing stores. An in-memory workspace is always ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	backend := "ok"
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
			status, code = "not_ready", http.StatusServiceUnavailable
			backend = "failed: " + err.Error()
		}
	}
	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]any{
			"backend": backend,
			"rate_limiter": map[string]int64{
				"active_clients": int64(s.limiter.ActiveClients()),
				"rejected":       s.limiter.Rejected(),
			},
		},
	}).Write(w)
}

// validationError maps a form validation failure onto a 422.
func validationError(err error) *ResponseBuilder {
	var fe *core.FieldError
	switch {
	case errors.As(err, &fe):
		return FieldError(fe.Field, fe.Field+" is required")
	case errors.Is(err, core.ErrInvalidStatus):
		return FieldError("status", "status is not a known value")
	default:
		return ErrorResponse(http.StatusUnprocessableEntity, err.Error())
	}
}

// decodeError maps a body decoding failure onto a 400 or 413.
func decodeError(err error) *ResponseBuilder {
	if errors.Is(err, ErrBodyTooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, err.Error())
	}
	return BadRequestError(err.Error())
}
