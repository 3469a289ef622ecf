package payroll

import "rhmaster/internal/domain/core"

// AdvanceExtra is the manually entered part of an employee's advance.
type AdvanceExtra struct {
	OtherAdvances float64 `json:"otherAdvances"`
	Observations  string  `json:"observations"`
}

// AdvanceSheet is the advance run of one period, keyed by employee id.
type AdvanceSheet struct {
	PeriodStart string                  `json:"periodStart"`
	PeriodEnd   string                  `json:"periodEnd"`
	Extras      map[string]AdvanceExtra `json:"extras"`
}

type AdvanceLine struct {
	Employee      core.Employee `json:"employee"`
	Base          float64       `json:"base"`
	OtherAdvances float64       `json:"otherAdvances"`
	Total         float64       `json:"total"`
	Observations  string        `json:"observations"`
}

// Lines computes the advance of every employee in roster.
func (s AdvanceSheet) Lines(roster []core.Employee) []AdvanceLine {
	lines := make([]AdvanceLine, 0, len(roster))
	for _, emp := range roster {
		extra := s.Extras[emp.ID]
		lines = append(lines, AdvanceLine{
			Employee:      emp,
			Base:          AdvanceBase(emp),
			OtherAdvances: extra.OtherAdvances,
			Total:         Advance(emp, extra.OtherAdvances),
			Observations:  extra.Observations,
		})
	}
	return lines
}

func AdvanceGrandTotal(lines []AdvanceLine) float64 {
	totals := make([]float64, 0, len(lines))
	for _, line := range lines {
		totals = append(totals, line.Total)
	}
	return cents(dec(totals...))
}
