// Package gemini implements assist.Model on the Gemini API through the genai SDK.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"agencydesk/internal/assist"
)

const DefaultModel = "gemini-3-flash-preview"

type Client struct {
	api   *genai.Client
	model string
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*config)

// WithBaseURL points the client at another endpoint, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// New builds a client authenticated with apiKey.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{api: gc, model: model}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends one user turn and concatenates the text parts of the first
// candidate. A response without candidate content yields "" and no error.
func (c *Client) Generate(ctx context.Context, req assist.Request) (string, error) {
	var gcfg *genai.GenerateContentConfig
	if req.Format == assist.FormatLineItems {
		gcfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   lineItemsSchema(),
		}
	}

	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gcfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp), nil
}

func lineItemsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description":   {Type: genai.TypeString},
				"estimatedRate": {Type: genai.TypeNumber},
			},
			Required: []string{"description", "estimatedRate"},
		},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
