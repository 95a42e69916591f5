// Package assist drafts project descriptions and invoice line items with a
// generative model. Every failure degrades to a fixed placeholder value.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"agencydesk/internal/core"
	"agencydesk/internal/log"
)

const (
	FallbackDescriptionError = "Error generating description."
	FallbackDescriptionEmpty = "No description generated."

	// DefaultClientName is used in prompts when the client cannot be resolved.
	DefaultClientName = "Client"
)

// ErrOffline is returned by the offline model.
var ErrOffline = errors.New("assist: no model configured")

// Format selects the response shape requested from the model.
type Format int

const (
	FormatText Format = iota
	// FormatLineItems asks for a JSON array of {description, estimatedRate}.
	FormatLineItems
)

// Request is one prompt sent to a Model.
type Request struct {
	Prompt string
	Format Format
}

// Model is the raw generative backend.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req Request) (string, error)

func (f ModelFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Offline is a Model that always fails with ErrOffline.
type Offline struct{}

func (Offline) Generate(context.Context, Request) (string, error) {
	return "", ErrOffline
}

// Call outcomes reported to the Observer.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Operation names reported to the Observer.
const (
	OpDescription = "project_description"
	OpLineItems   = "invoice_items"
)

// Observer receives one call per model invocation.
type Observer func(op, outcome string)

// Assistant wraps a Model with prompts, timeouts and fallbacks.
type Assistant struct {
	model    Model
	timeout  time.Duration
	logger   *log.Logger
	observer Observer
}

type Option func(*Assistant)

func WithTimeout(d time.Duration) Option {
	return func(a *Assistant) { a.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

func WithObserver(o Observer) Option {
	return func(a *Assistant) { a.observer = o }
}

// New creates an Assistant. A nil model behaves like Offline.
func New(model Model, opts ...Option) *Assistant {
	if model == nil {
		model = Offline{}
	}
	a := &Assistant{model: model, timeout: 20 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Discard()
	}
	a.logger = a.logger.WithComponent(log.ComponentAssist)
	return a
}

// ProjectDescription returns the generated text unmodified, or one of the
// fallback strings. Only an empty reply counts as "no description".
func (a *Assistant) ProjectDescription(ctx context.Context, projectName, clientName string) string {
	if strings.TrimSpace(clientName) == "" {
		clientName = DefaultClientName
	}
	text, err := a.generate(ctx, Request{Prompt: DescriptionPrompt(projectName, clientName), Format: FormatText})
	if err != nil {
		a.logger.ErrorContext(ctx, "AI generation failed",
			log.FieldOperation, log.OpGenerate,
			log.FieldError, err)
		a.observe(OpDescription, OutcomeError)
		return FallbackDescriptionError
	}
	if text == "" {
		a.observe(OpDescription, OutcomeEmpty)
		return FallbackDescriptionEmpty
	}
	a.observe(OpDescription, OutcomeOK)
	return text
}

// SuggestLineItems returns suggested invoice items. Failures yield an empty, non-nil slice.
func (a *Assistant) SuggestLineItems(ctx context.Context, projectName, projectDescription string) []core.LineItemSuggestion {
	text, err := a.generate(ctx, Request{Prompt: LineItemsPrompt(projectName, projectDescription), Format: FormatLineItems})
	if err == nil {
		var items []core.LineItemSuggestion
		items, err = ParseLineItems(text)
		if err == nil {
			outcome := OutcomeOK
			if len(items) == 0 {
				outcome = OutcomeEmpty
			}
			a.observe(OpLineItems, outcome)
			return items
		}
	}
	a.logger.ErrorContext(ctx, "AI suggestion failed",
		log.FieldOperation, log.OpSuggest,
		log.FieldError, err)
	a.observe(OpLineItems, OutcomeError)
	return []core.LineItemSuggestion{}
}

func (a *Assistant) generate(ctx context.Context, req Request) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.model.Generate(ctx, req)
}

func (a *Assistant) observe(op, outcome string) {
	if a.observer != nil {
		a.observer(op, outcome)
	}
}

// ParseLineItems decodes a JSON array of suggestions. Blank input is an empty list.
func ParseLineItems(text string) ([]core.LineItemSuggestion, error) {
	if text == "" {
		return []core.LineItemSuggestion{}, nil
	}
	var raw []struct {
		Description   *string          `json:"description"`
		EstimatedRate *decimal.Decimal `json:"estimatedRate"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	out := make([]core.LineItemSuggestion, 0, len(raw))
	for i, r := range raw {
		if r.Description == nil || r.EstimatedRate == nil {
			return nil, fmt.Errorf("line item %d: description and estimatedRate are required", i)
		}
		out = append(out, core.LineItemSuggestion{Description: *r.Description, EstimatedRate: *r.EstimatedRate})
	}
	return out, nil
}
