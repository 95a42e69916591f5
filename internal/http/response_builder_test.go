package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agencydesk/internal/core"
)

func TestResponseBuilder_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/clients/c9").
		Body(map[string]string{"id": "c9"}).
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != contentTypeJSON {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Location") != "/api/clients/c9" {
		t.Fatalf("location = %q", rec.Header().Get("Location"))
	}
	if rec.Body.String() != "{\"id\":\"c9\"}\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(rec)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Body(func() {}).Write(rec)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name      string
		builder   *ResponseBuilder
		wantCode  int
		wantField string
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest, ""},
		{"field", FieldError("phone", "phone is required"), http.StatusUnprocessableEntity, "phone"},
		{"not found", NotFoundError("missing"), http.StatusNotFound, ""},
		{"conflict", ConflictError("busy"), http.StatusConflict, ""},
		{"rate limited", TooManyRequestsError(), http.StatusTooManyRequests, ""},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError, ""},
		{"method", MethodNotAllowedError(), http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.builder.Write(rec)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" || body.Field != tt.wantField {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{"required field", core.ClientForm{}.Validate(), "companyName"},
		{"bad status", core.ErrInvalidStatus, "status"},
		{"other", errors.New("odd"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			validationError(tt.err).Write(rec)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", rec.Code)
			}
			var body ErrorBody
			_ = json.Unmarshal(rec.Body.Bytes(), &body)
			if body.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", body.Field, tt.wantField)
			}
		})
	}
}
