// Package core holds the workspace entities, their form validation and the
// pure derivations computed from them.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectOnHold    ProjectStatus = "On Hold"
)

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// DateLayout is the calendar date format used for project and invoice dates.
const DateLayout = "2006-01-02"

type (
	ProjectStatus string
	InvoiceStatus string

	Client struct {
		ID          string `json:"id" yaml:"id"`
		CompanyName string `json:"companyName" yaml:"companyName"`
		PICName     string `json:"picName" yaml:"picName"` // primary contact
		Phone       string `json:"phone" yaml:"phone"`
		Email       string `json:"email" yaml:"email"`
		Address     string `json:"address" yaml:"address"`
		SubDistrict string `json:"subDistrict" yaml:"subDistrict"`
		City        string `json:"city" yaml:"city"`
	}

	Project struct {
		ID          string          `json:"id" yaml:"id"`
		Name        string          `json:"name" yaml:"name"`
		ClientID    string          `json:"clientId" yaml:"clientId"`
		Description string          `json:"description" yaml:"description"`
		Status      ProjectStatus   `json:"status" yaml:"status"`
		Budget      decimal.Decimal `json:"budget" yaml:"budget"`
		StartDate   string          `json:"startDate" yaml:"startDate"`
		EndDate     string          `json:"endDate,omitempty" yaml:"endDate,omitempty"`
		Tasks       []string        `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	}

	InvoiceItem struct {
		ID          string          `json:"id" yaml:"id"` // unique within the parent invoice
		Description string          `json:"description" yaml:"description"`
		Quantity    decimal.Decimal `json:"quantity" yaml:"quantity"`
		Rate        decimal.Decimal `json:"rate" yaml:"rate"`
	}

	Invoice struct {
		ID            string        `json:"id" yaml:"id"`
		ProjectID     string        `json:"projectId" yaml:"projectId"`
		InvoiceNumber string        `json:"invoiceNumber" yaml:"invoiceNumber"`
		Date          string        `json:"date" yaml:"date"`
		DueDate       string        `json:"dueDate" yaml:"dueDate"`
		Items         []InvoiceItem `json:"items" yaml:"items"`
		Status        InvoiceStatus `json:"status" yaml:"status"`
		Notes         string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	}

	// ClientForm is the submitted client attribute set, minus the id.
	ClientForm struct {
		CompanyName string `json:"companyName"`
		PICName     string `json:"picName"`
		Phone       string `json:"phone"`
		Email       string `json:"email"`
		Address     string `json:"address"`
		SubDistrict string `json:"subDistrict"`
		City        string `json:"city"`
	}

	// ProjectForm is the submitted project attribute set, minus the id.
	// Zero values for Status and StartDate are filled with defaults on create.
	ProjectForm struct {
		Name        string          `json:"name"`
		ClientID    string          `json:"clientId"`
		Description string          `json:"description"`
		Status      ProjectStatus   `json:"status"`
		Budget      decimal.Decimal `json:"budget"`
		StartDate   string          `json:"startDate"`
		EndDate     string          `json:"endDate,omitempty"`
		Tasks       []string        `json:"tasks,omitempty"`
	}

	// LineItemSuggestion is a drafted invoice line returned by the assist service.
	LineItemSuggestion struct {
		Description   string          `json:"description"`
		EstimatedRate decimal.Decimal `json:"estimatedRate"`
	}
)

var (
	ErrRequired      = errors.New("required field missing")
	ErrInvalidStatus = errors.New("invalid status")
)

// ProjectStatuses lists every project status in display order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold}
}

// InvoiceStatuses lists every invoice status in display order.
func InvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue}
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// Validate checks required presence only. Formats and ranges are accepted as-is.
func (f ClientForm) Validate() error {
	if strings.TrimSpace(f.CompanyName) == "" {
		return requiredErr("companyName")
	}
	if strings.TrimSpace(f.PICName) == "" {
		return requiredErr("picName")
	}
	if strings.TrimSpace(f.Phone) == "" {
		return requiredErr("phone")
	}
	return nil
}

// Validate checks required presence and, when given, that the status is one of the four known values.
func (f ProjectForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return requiredErr("name")
	}
	if f.Status != "" && !f.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Client builds a Client from the form with the given id.
func (f ClientForm) Client(id string) Client {
	return Client{
		ID:          id,
		CompanyName: f.CompanyName,
		PICName:     f.PICName,
		Phone:       f.Phone,
		Email:       f.Email,
		Address:     f.Address,
		SubDistrict: f.SubDistrict,
		City:        f.City,
	}
}

// Form returns the editable attributes of c.
func (c Client) Form() ClientForm {
	return ClientForm{
		CompanyName: c.CompanyName,
		PICName:     c.PICName,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		SubDistrict: c.SubDistrict,
		City:        c.City,
	}
}

// Project builds a Project from the form with the given id, applying create-time defaults.
func (f ProjectForm) Project(id string, today time.Time) Project {
	status := f.Status
	if status == "" {
		status = ProjectPlanning
	}
	start := f.StartDate
	if start == "" {
		start = today.UTC().Format(DateLayout)
	}
	return Project{
		ID:          id,
		Name:        f.Name,
		ClientID:    f.ClientID,
		Description: f.Description,
		Status:      status,
		Budget:      f.Budget,
		StartDate:   start,
		EndDate:     f.EndDate,
		Tasks:       append([]string(nil), f.Tasks...),
	}
}

func requiredErr(field string) error {
	return &FieldError{Field: field, Err: ErrRequired}
}

// FieldError ties a validation failure to a form field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }
