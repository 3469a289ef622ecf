package payroll

import "time"

// Adjustments are the period specific earnings and deductions of one
// employee. Overtime counts and VT are informational only.
type Adjustments struct {
	// Earnings
	OtherIncome float64 `json:"otherIncome"`
	Bonuses     float64 `json:"bonuses"`
	VT          bool    `json:"vt"`
	BasicBasket float64 `json:"basicBasket"`
	OT100       float64 `json:"ot100"`
	OT70        float64 `json:"ot70"`
	OT50        float64 `json:"ot50"`
	VR          float64 `json:"vr"`

	// Deductions
	Advances       float64 `json:"advances"`
	Absences       float64 `json:"absences"`
	Loans          float64 `json:"loans"`
	OtherDiscounts float64 `json:"otherDiscounts"`
	Pharmacy       float64 `json:"pharmacy"`
	Supermarket    float64 `json:"supermarket"`
	Dental         float64 `json:"dental"`
	Medical        float64 `json:"medical"`
	OtherConvenios float64 `json:"otherConvenios"`

	Observations string `json:"observations"`
}

type Record struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	ClosingDate string    `json:"closingDate"`
	CreatedAt   time.Time `json:"createdAt"`
	Adjustments
}

// NewRecord builds an unsaved record; the store assigns id and creation time.
func NewRecord(employeeID, closingDate string, adj Adjustments) Record {
	return Record{EmployeeID: employeeID, ClosingDate: closingDate, Adjustments: adj}
}
