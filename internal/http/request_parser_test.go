package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agencydesk/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid object", `{"companyName":"Acme"}`, nil},
		{"empty body", ``, ErrEmptyBody},
		{"syntax error", `{"companyName":`, ErrMalformedJSON},
		{"truncated", `{"companyName":"Acme"`, ErrMalformedJSON},
		{"wrong type", `{"companyName":42}`, ErrMalformedJSON},
		{"two objects", `{"companyName":"a"} {"companyName":"b"}`, ErrTrailingData},
		{"too large", `{"companyName":"` + strings.Repeat("x", maxBodyBytes) + `"}`, ErrBodyTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(tt.body))
			var form core.ClientForm
			err := DecodeJSON(httptest.NewRecorder(), r, &form)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				if form.CompanyName != "Acme" {
					t.Fatalf("decoded %+v", form)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  padded  ", "padded"},
		{"bell\x07char", "bellchar"},
		{"line\nbreak\ttab", "line\nbreak\ttab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeProjectForm_DropsBlankTasks(t *testing.T) {
	f := sanitizeProjectForm(core.ProjectForm{
		Name:   " Site ",
		Status: " Active ",
		Tasks:  []string{" wireframes ", "  ", "launch"},
	})
	if f.Name != "Site" || f.Status != core.ProjectActive {
		t.Fatalf("form = %+v", f)
	}
	if len(f.Tasks) != 2 || f.Tasks[0] != "wireframes" || f.Tasks[1] != "launch" {
		t.Fatalf("tasks = %q", f.Tasks)
	}
}

func TestAssistRequestsSanitized(t *testing.T) {
	d := DescriptionRequest{FormKey: " k ", Name: "\x00Site", ClientID: " c1"}.sanitized()
	if d.FormKey != "k" || d.Name != "Site" || d.ClientID != "c1" {
		t.Fatalf("description request = %+v", d)
	}
	l := LineItemsRequest{FormKey: "k", ProjectName: " Site ", ProjectDescription: " about \n"}.sanitized()
	if l.ProjectName != "Site" || l.ProjectDescription != "about" {
		t.Fatalf("line items request = %+v", l)
	}
}
