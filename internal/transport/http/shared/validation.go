package shared

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Date requires a complete DD/MM/YYYY calendar date.
func (v *Validator) Date(field, raw string) bool {
	if _, err := core.ParseDate(strings.TrimSpace(raw)); err != nil {
		v.Add(field, "must be a valid date in DD/MM/YYYY format")
		return false
	}
	return true
}

// Company accepts an enumerated company or, when allowUnset, an empty value.
func (v *Validator) Company(field, raw string, allowUnset bool) core.Company {
	company, err := core.ParseCompany(raw)
	if err != nil {
		v.Add(field, err.Error())
		return core.CompanyNone
	}
	if company == core.CompanyNone && !allowUnset {
		v.Add(field, "company is required")
	}
	return company
}

// Err records a domain validation failure.
func (v *Validator) Err(err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		v.Add(verr.Field, verr.Message)
		return
	}
	if err != nil {
		v.Add("", err.Error())
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

// FailValidation answers 400. The first issue's reason becomes the
// envelope message so single field failures read naturally.
func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	message := "payload validation failed"
	if len(issues) == 1 {
		message = issues[0].Reason
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		message,
		map[string]any{"fields": issues},
		requestID,
	)
}
