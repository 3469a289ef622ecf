package core

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldName reduces a name to a comparable form: case folded, accents removed.
// Transformers keep state, so each call builds its own chain.
func foldName(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, value)
	if err != nil {
		return strings.ToLower(value)
	}
	return folded
}

// FilterRoster keeps employees whose name contains term (ignoring case and
// accents) and who belong to company. Empty term or CompanyNone do not filter.
func FilterRoster(employees []Employee, term string, company Company) []Employee {
	needle := foldName(strings.TrimSpace(term))
	out := make([]Employee, 0, len(employees))
	for _, emp := range employees {
		if needle != "" && !strings.Contains(foldName(emp.Name), needle) {
			continue
		}
		if company != CompanyNone && emp.Company != company {
			continue
		}
		out = append(out, emp)
	}
	return out
}

// ByCompany keeps the employees of one company; CompanyNone keeps everyone.
func ByCompany(employees []Employee, company Company) []Employee {
	return FilterRoster(employees, "", company)
}

type SalaryPoint struct {
	Name   string  `json:"name"`
	Salary float64 `json:"salary"`
}

type Summary struct {
	Headcount     int           `json:"headcount"`
	TotalSalaries float64       `json:"totalSalaries"`
	AverageSalary float64       `json:"averageSalary"`
	TopSalaries   []SalaryPoint `json:"topSalaries"`
	RecordCount   int           `json:"recordCount"`
}

const topSalaryCount = 5

// Summarize computes the dashboard figures over the roster.
func Summarize(employees []Employee, recordCount int) Summary {
	summary := Summary{Headcount: len(employees), RecordCount: recordCount}
	for _, emp := range employees {
		summary.TotalSalaries += emp.Salary
	}
	if summary.Headcount > 0 {
		summary.AverageSalary = summary.TotalSalaries / float64(summary.Headcount)
	}

	sorted := make([]Employee, len(employees))
	copy(sorted, employees)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Salary > sorted[j].Salary })
	if len(sorted) > topSalaryCount {
		sorted = sorted[:topSalaryCount]
	}
	summary.TopSalaries = make([]SalaryPoint, 0, len(sorted))
	for _, emp := range sorted {
		first := emp.Name
		if fields := strings.Fields(emp.Name); len(fields) > 0 {
			first = fields[0]
		}
		summary.TopSalaries = append(summary.TopSalaries, SalaryPoint{Name: first, Salary: emp.Salary})
	}
	return summary
}
