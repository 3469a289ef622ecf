package payroll

import (
	"fmt"

	"rhmaster/internal/domain/core"
)

// OrphanPolicy decides what happens to records whose employee is unknown.
type OrphanPolicy string

const (
	OrphanTolerate OrphanPolicy = "tolerate"
	OrphanReject   OrphanPolicy = "reject"
)

func ParseOrphanPolicy(value string) (OrphanPolicy, error) {
	switch OrphanPolicy(value) {
	case OrphanTolerate:
		return OrphanTolerate, nil
	case OrphanReject:
		return OrphanReject, nil
	}
	return "", fmt.Errorf("%w: orphan record policy %q", ErrUnknownPolicy, value)
}

type HistoryRow struct {
	Record       Record  `json:"record"`
	Company      string  `json:"company"`
	EmployeeName string  `json:"employeeName"`
	Net          float64 `json:"net"`
	Known        bool    `json:"known"`
}

// History joins records with their employees in the given order. Under
// OrphanTolerate unknown employees render as placeholders; under
// OrphanReject the first orphan aborts with ErrOrphanRecord.
func History(records []Record, employees []core.Employee, calc Calculator, policy OrphanPolicy) ([]HistoryRow, error) {
	byID := make(map[string]core.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		emp, ok := byID[rec.EmployeeID]
		if !ok {
			if policy == OrphanReject {
				return nil, fmt.Errorf("%w: record %s employee %s", ErrOrphanRecord, rec.ID, rec.EmployeeID)
			}
			rows = append(rows, HistoryRow{Record: rec, Company: MissingValue, EmployeeName: UnknownEmployee})
			continue
		}
		company := string(emp.Company)
		if company == "" {
			company = MissingValue
		}
		rows = append(rows, HistoryRow{
			Record:       rec,
			Company:      company,
			EmployeeName: emp.Name,
			Net:          calc.NetPay(emp, rec.Adjustments),
			Known:        true,
		})
	}
	return rows, nil
}
