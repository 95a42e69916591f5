package http

import (
	"strings"

	"agencydesk/internal/core"
)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizeClientForm(f core.ClientForm) core.ClientForm {
	return core.ClientForm{
		CompanyName: sanitizeInput(f.CompanyName),
		PICName:     sanitizeInput(f.PICName),
		Phone:       sanitizeInput(f.Phone),
		Email:       sanitizeInput(f.Email),
		Address:     sanitizeInput(f.Address),
		SubDistrict: sanitizeInput(f.SubDistrict),
		City:        sanitizeInput(f.City),
	}
}

func sanitizeProjectForm(f core.ProjectForm) core.ProjectForm {
	out := f
	out.Name = sanitizeInput(f.Name)
	out.ClientID = sanitizeInput(f.ClientID)
	out.Description = sanitizeInput(f.Description)
	out.Status = core.ProjectStatus(sanitizeInput(string(f.Status)))
	out.StartDate = sanitizeInput(f.StartDate)
	out.EndDate = sanitizeInput(f.EndDate)
	out.Tasks = nil
	for _, t := range f.Tasks {
		if t = sanitizeInput(t); t != "" {
			out.Tasks = append(out.Tasks, t)
		}
	}
	return out
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
