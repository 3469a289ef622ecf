package core

import (
	"math"
	"strconv"
	"strings"
)

// Numeric is a number as the remote store hands it back: a decimal string.
type Numeric string

// NumericOf renders v without losing precision.
func NumericOf(v float64) Numeric {
	return Numeric(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float coerces the value the way the remote contract expects: missing,
// unparsable, NaN and infinite values are 0.
func (n Numeric) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// EmployeeRow is the storage shape of an employee: snake_case columns and
// ISO dates, empty string standing for NULL.
type EmployeeRow struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Company          string  `json:"company"`
	AdmissionDate    string  `json:"admission_date"`
	DismissalDate    string  `json:"dismissal_date"`
	BirthDate        string  `json:"birth_date"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	CEP              string  `json:"cep"`
	Phone            string  `json:"phone"`
	FatherName       string  `json:"father_name"`
	MotherName       string  `json:"mother_name"`
	CPF              string  `json:"cpf"`
	RG               string  `json:"rg"`
	CTPS             string  `json:"ctps"`
	PIS              string  `json:"pis"`
	VoterID          string  `json:"voter_id"`
	Role             string  `json:"role"`
	Salary           Numeric `json:"salary"`
	RoleAccumulation Numeric `json:"role_accumulation"`
}

func EmployeeToRow(emp Employee) EmployeeRow {
	return EmployeeRow{
		ID:               emp.ID,
		Name:             emp.Name,
		Company:          string(emp.Company),
		AdmissionDate:    DateToISO(emp.AdmissionDate),
		DismissalDate:    DateToISO(emp.DismissalDate),
		BirthDate:        DateToISO(emp.BirthDate),
		Address:          emp.Address,
		City:             emp.City,
		State:            emp.State,
		CEP:              emp.CEP,
		Phone:            emp.Phone,
		FatherName:       emp.FatherName,
		MotherName:       emp.MotherName,
		CPF:              emp.CPF,
		RG:               emp.RG,
		CTPS:             emp.CTPS,
		PIS:              emp.PIS,
		VoterID:          emp.VoterID,
		Role:             emp.Role,
		Salary:           NumericOf(emp.Salary),
		RoleAccumulation: NumericOf(emp.RoleAccumulation),
	}
}

// EmployeeFromRow maps a stored row back. A company value outside the
// enumeration is dropped to unset rather than failing the whole read.
func EmployeeFromRow(row EmployeeRow) Employee {
	company, err := ParseCompany(row.Company)
	if err != nil {
		company = CompanyNone
	}
	return Employee{
		ID:               row.ID,
		Name:             row.Name,
		Company:          company,
		AdmissionDate:    DateFromISO(row.AdmissionDate),
		DismissalDate:    DateFromISO(row.DismissalDate),
		BirthDate:        DateFromISO(row.BirthDate),
		Address:          row.Address,
		City:             row.City,
		State:            row.State,
		CEP:              row.CEP,
		Phone:            row.Phone,
		FatherName:       row.FatherName,
		MotherName:       row.MotherName,
		CPF:              row.CPF,
		RG:               row.RG,
		CTPS:             row.CTPS,
		PIS:              row.PIS,
		VoterID:          row.VoterID,
		Role:             row.Role,
		Salary:           row.Salary.Float(),
		RoleAccumulation: row.RoleAccumulation.Float(),
	}
}
