package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rhmaster/internal/domain/core"
)

// AbsencePolicy decides how the absences field turns into a deduction.
type AbsencePolicy string

const (
	// AbsenceProratedDays treats absences as a day count worth salary/30 each.
	AbsenceProratedDays AbsencePolicy = "per_day"
	// AbsenceAsAmount treats absences as a currency amount already.
	AbsenceAsAmount AbsencePolicy = "amount"
)

func ParseAbsencePolicy(value string) (AbsencePolicy, error) {
	switch AbsencePolicy(value) {
	case AbsenceProratedDays:
		return AbsenceProratedDays, nil
	case AbsenceAsAmount:
		return AbsenceAsAmount, nil
	}
	return "", fmt.Errorf("%w: absence policy %q", ErrUnknownPolicy, value)
}

type Calculator struct {
	Absence AbsencePolicy
}

func NewCalculator(policy AbsencePolicy) Calculator {
	return Calculator{Absence: policy}
}

// Breakdown is a computed payroll line for one employee and period.
type Breakdown struct {
	Earnings   float64 `json:"earnings"`
	Absence    float64 `json:"absenceDeduction"`
	Deductions float64 `json:"deductions"`
	Net        float64 `json:"net"`
}

func dec(values ...float64) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// AbsenceDeduction converts the absences field under the configured policy.
func (c Calculator) AbsenceDeduction(emp core.Employee, adj Adjustments) float64 {
	return cents(c.absence(emp, adj))
}

// The zero policy prorates per day.
func (c Calculator) absence(emp core.Employee, adj Adjustments) decimal.Decimal {
	switch c.Absence {
	case AbsenceAsAmount:
		return dec(adj.Absences)
	default:
		return dec(emp.Salary).Div(decimal.NewFromInt(DaysPerMonth)).Mul(dec(adj.Absences))
	}
}

// Compute returns earnings, deductions and net pay for one period.
func (c Calculator) Compute(emp core.Employee, adj Adjustments) Breakdown {
	earnings := dec(emp.Salary, emp.RoleAccumulation, adj.OtherIncome, adj.Bonuses, adj.BasicBasket, adj.VR)
	absence := c.absence(emp, adj)
	deductions := dec(
		adj.Advances, adj.Loans, adj.OtherDiscounts, adj.Pharmacy,
		adj.Supermarket, adj.Dental, adj.Medical, adj.OtherConvenios,
	).Add(absence)
	return Breakdown{
		Earnings:   cents(earnings),
		Absence:    cents(absence),
		Deductions: cents(deductions),
		Net:        cents(earnings.Sub(deductions)),
	}
}

// NetPay is the amount payable to emp for the period described by adj.
func (c Calculator) NetPay(emp core.Employee, adj Adjustments) float64 {
	return c.Compute(emp, adj).Net
}

// Advance is the interim payment entitlement: 40% of base pay plus any
// extra amount entered for the period.
func Advance(emp core.Employee, extra float64) float64 {
	return cents(advanceBase(emp).Add(dec(extra)))
}

// AdvanceBase is the 40% portion of Advance.
func AdvanceBase(emp core.Employee) float64 {
	return cents(advanceBase(emp))
}

func advanceBase(emp core.Employee) decimal.Decimal {
	return dec(emp.Salary, emp.RoleAccumulation).Mul(decimal.NewFromFloat(AdvanceRate))
}
