package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var (
	ErrEmptyBody     = errors.New("request body is empty")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrTrailingData  = errors.New("request body must contain a single JSON object")
	ErrMalformedJSON = errors.New("malformed JSON")
)

// DescriptionRequest is the body of POST /api/assist/project-description.
type DescriptionRequest struct {
	FormKey  string `json:"formKey"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

// LineItemsRequest is the body of POST /api/assist/invoice-items.
type LineItemsRequest struct {
	FormKey            string `json:"formKey"`
	ProjectName        string `json:"projectName"`
	ProjectDescription string `json:"projectDescription"`
}

// DecodeJSON reads a single JSON value from r into dst, bounded by maxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case errors.As(err, &maxErr):
			return ErrBodyTooLarge
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return ErrMalformedJSON
		case errors.As(err, &typeErr):
			return fmt.Errorf("field %q has the wrong type: %w", typeErr.Field, ErrMalformedJSON)
		default:
			return fmt.Errorf("decode body: %w", err)
		}
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

// queryValue returns the sanitized value of a query parameter.
func queryValue(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}

func (req DescriptionRequest) sanitized() DescriptionRequest {
	return DescriptionRequest{
		FormKey:  sanitizeInput(req.FormKey),
		Name:     sanitizeInput(req.Name),
		ClientID: sanitizeInput(req.ClientID),
	}
}

func (req LineItemsRequest) sanitized() LineItemsRequest {
	return LineItemsRequest{
		FormKey:            sanitizeInput(req.FormKey),
		ProjectName:        sanitizeInput(req.ProjectName),
		ProjectDescription: strings.TrimSpace(sanitizeInput(req.ProjectDescription)),
	}
}
