package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"agencydesk/internal/log"
)

type observation struct {
	route  string
	method string
	status int
}

func TestMiddleware_RecordsRoutePatternAndStatus(t *testing.T) {
	var got []observation
	m := NewMiddleware(log.Discard(), nil, func(route, method string, status int, _ time.Duration) {
		got = append(got, observation{route, method, status})
	})

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("request id missing from context")
		}
		if log.FromContext(r.Context()).Component() != log.ComponentHTTP {
			t.Error("request logger missing from context")
		}
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/abc", nil))

	if len(got) != 1 {
		t.Fatalf("observations = %d", len(got))
	}
	want := observation{"/api/clients/{id}", http.MethodGet, http.StatusNotFound}
	if got[0] != want {
		t.Fatalf("observation = %+v, want %+v", got[0], want)
	}
	if !strings.HasPrefix(rec.Header().Get(HeaderRequestID), "req_") {
		t.Fatalf("request id header = %q", rec.Header().Get(HeaderRequestID))
	}
	if m.Total() != 1 {
		t.Fatalf("total = %d", m.Total())
	}
}

func TestMiddleware_HonoursInboundRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetRequestID(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Body.String() != "abc-123" || rec.Header().Get(HeaderRequestID) != "abc-123" {
		t.Fatalf("inbound id not kept: body=%q header=%q", rec.Body.String(), rec.Header().Get(HeaderRequestID))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 100))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !strings.HasPrefix(rec.Body.String(), "req_") {
		t.Fatalf("oversized id should be replaced, got %q", rec.Body.String())
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	var route string
	m := NewMiddleware(log.Discard(), nil, func(r, _ string, _ int, _ time.Duration) { route = r })
	h := m.Middleware(http.NotFoundHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if route != unmatchedRoute {
		t.Fatalf("route = %q", route)
	}
}
