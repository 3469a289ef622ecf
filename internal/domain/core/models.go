package core

import "fmt"

// Company is one of the contracting companies. The zero value means unset.
type Company string

const (
	CompanyNone      Company = ""
	CompanyCampluvas Company = "CAMPLUVAS"
	CompanyLocatex   Company = "LOCATEX"
)

// Companies lists every contracting company in display order.
var Companies = []Company{CompanyCampluvas, CompanyLocatex}

func ParseCompany(value string) (Company, error) {
	switch Company(value) {
	case CompanyNone:
		return CompanyNone, nil
	case CompanyCampluvas:
		return CompanyCampluvas, nil
	case CompanyLocatex:
		return CompanyLocatex, nil
	}
	return CompanyNone, fmt.Errorf("unknown company %q", value)
}

func (c Company) Valid() bool {
	switch c {
	case CompanyNone, CompanyCampluvas, CompanyLocatex:
		return true
	}
	return false
}

// Label is the name shown for a company filter; unset means every company.
func (c Company) Label() string {
	switch c {
	case CompanyCampluvas, CompanyLocatex:
		return string(c)
	case CompanyNone:
		return "Geral"
	}
	return string(c)
}

type Employee struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Company          Company `json:"company"`
	AdmissionDate    string  `json:"admissionDate"`
	DismissalDate    string  `json:"dismissalDate"`
	BirthDate        string  `json:"birthDate"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	CEP              string  `json:"cep"`
	Phone            string  `json:"phone"`
	FatherName       string  `json:"fatherName"`
	MotherName       string  `json:"motherName"`
	CPF              string  `json:"cpf"`
	RG               string  `json:"rg"`
	CTPS             string  `json:"ctps"`
	PIS              string  `json:"pis"`
	VoterID          string  `json:"voterId"`
	Role             string  `json:"role"`
	Salary           float64 `json:"salary"`
	RoleAccumulation float64 `json:"roleAccumulation"`
}

// BasePay is the salary plus the role accumulation bonus, the base of every
// payroll computation.
func (e Employee) BasePay() float64 {
	return e.Salary + e.RoleAccumulation
}

// Find returns the employee with the given id.
func Find(employees []Employee, id string) (Employee, bool) {
	for _, emp := range employees {
		if emp.ID == id {
			return emp, true
		}
	}
	return Employee{}, false
}
