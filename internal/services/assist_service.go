package services

import (
	"context"
	"errors"
	"strings"

	"agencydesk/internal/assist"
	"agencydesk/internal/core"
)

// ErrProjectNameRequired is returned when an assist call has no project name to work from.
var ErrProjectNameRequired = errors.New("project name is required")

// ClientNamer resolves a client id to its company name, "" when unknown.
type ClientNamer interface {
	CompanyName(clientID string) string
}

// AssistService serialises assist calls per form key and resolves names for prompts.
type AssistService struct {
	assistant *assist.Assistant
	guard     *assist.Guard
	clients   ClientNamer
}

func NewAssistService(a *assist.Assistant, g *assist.Guard, clients ClientNamer) *AssistService {
	return &AssistService{assistant: a, guard: g, clients: clients}
}

// DraftDescription generates a project description. It fails only with
// ErrProjectNameRequired or assist.ErrBusy; model failures yield fallback text.
func (s *AssistService) DraftDescription(ctx context.Context, formKey, projectName, clientID string) (string, error) {
	if strings.TrimSpace(projectName) == "" {
		return "", ErrProjectNameRequired
	}
	release, err := s.guard.Begin(formKey)
	if err != nil {
		return "", err
	}
	defer release()

	clientName := ""
	if s.clients != nil {
		clientName = s.clients.CompanyName(clientID)
	}
	return s.assistant.ProjectDescription(ctx, projectName, clientName), nil
}

// SuggestItems drafts invoice line items for a project.
func (s *AssistService) SuggestItems(ctx context.Context, formKey, projectName, projectDescription string) ([]core.LineItemSuggestion, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, ErrProjectNameRequired
	}
	release, err := s.guard.Begin(formKey)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.assistant.SuggestLineItems(ctx, projectName, projectDescription), nil
}

func (s *AssistService) Status(formKey string) assist.Status {
	return s.guard.Status(formKey)
}
