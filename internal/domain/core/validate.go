package core

import (
	"strings"
	"unicode/utf8"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CleanCPF strips everything but digits.
func CleanCPF(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks the two mod-11 check digits of a national tax id.
func ValidCPF(value string) bool {
	raw := CleanCPF(value)
	if len(raw) != 11 {
		return false
	}
	if strings.Count(raw, raw[:1]) == 11 {
		return false
	}
	digits := make([]int, 11)
	for i := range raw {
		digits[i] = int(raw[i] - '0')
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for i, d := range digits {
		sum += d * (weight - i)
	}
	rest := 11 - sum%11
	if rest >= 10 {
		return 0
	}
	return rest
}

// ValidateRegistration runs the registration checks in priority order and
// returns the first failure, then the remaining record invariants.
func ValidateRegistration(emp Employee) error {
	if emp.Company == CompanyNone {
		return invalid("company", "select the contracting company")
	}
	if name := strings.TrimSpace(emp.Name); name == "" || utf8.RuneCountInString(name) < 3 {
		return invalid("name", "enter the full name")
	}
	if len(CleanCPF(emp.CPF)) != 11 {
		return invalid("cpf", "cpf must have 11 digits")
	}
	if !ValidCPF(emp.CPF) {
		return invalid("cpf", "cpf is invalid, check the digits")
	}
	if strings.TrimSpace(emp.Role) == "" {
		return invalid("role", "enter the role or function")
	}
	if len(strings.TrimSpace(emp.AdmissionDate)) < len(DateLayout) {
		return invalid("admissionDate", "enter a valid admission date (DD/MM/YYYY)")
	}
	return ValidateEmployee(emp)
}

// ValidateEmployee checks the invariants every stored employee must hold.
func ValidateEmployee(emp Employee) error {
	if !emp.Company.Valid() {
		return invalid("company", "unknown company")
	}
	if emp.CPF != "" && !ValidCPF(emp.CPF) {
		return invalid("cpf", "cpf is invalid, check the digits")
	}
	dates := []struct {
		field string
		value string
	}{
		{"admissionDate", emp.AdmissionDate},
		{"dismissalDate", emp.DismissalDate},
		{"birthDate", emp.BirthDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if _, err := ParseDate(d.value); err != nil {
			return invalid(d.field, "must be a valid date in DD/MM/YYYY format")
		}
	}
	if emp.Salary < 0 {
		return invalid("salary", "must not be negative")
	}
	if emp.RoleAccumulation < 0 {
		return invalid("roleAccumulation", "must not be negative")
	}
	return nil
}
