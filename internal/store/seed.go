package store

import "rhmaster/internal/domain/core"

// seedEmployees is shown when the remote is unreachable and the local
// mirror was never populated.
func seedEmployees() []core.Employee {
	return []core.Employee{{
		ID:            "seed-employee-1",
		Name:          "Colaborador Exemplo (Local)",
		Company:       core.CompanyCampluvas,
		Role:          "Auxiliar Administrativo",
		AdmissionDate: "01/01/2024",
		CPF:           "000.000.000-00",
		Salary:        5000,
	}}
}
