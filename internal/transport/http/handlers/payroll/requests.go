package payrollhandler

import (
	"strings"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
)

// adjustmentsRequest accepts every amount as a number or a formatted string.
type adjustmentsRequest struct {
	OtherIncome    core.Amount `json:"otherIncome"`
	Bonuses        core.Amount `json:"bonuses"`
	VT             bool        `json:"vt"`
	BasicBasket    core.Amount `json:"basicBasket"`
	OT100          core.Amount `json:"ot100"`
	OT70           core.Amount `json:"ot70"`
	OT50           core.Amount `json:"ot50"`
	VR             core.Amount `json:"vr"`
	Advances       core.Amount `json:"advances"`
	Absences       core.Amount `json:"absences"`
	Loans          core.Amount `json:"loans"`
	OtherDiscounts core.Amount `json:"otherDiscounts"`
	Pharmacy       core.Amount `json:"pharmacy"`
	Supermarket    core.Amount `json:"supermarket"`
	Dental         core.Amount `json:"dental"`
	Medical        core.Amount `json:"medical"`
	OtherConvenios core.Amount `json:"otherConvenios"`
	Observations   string      `json:"observations"`
}

func (a adjustmentsRequest) adjustments() payroll.Adjustments {
	return payroll.Adjustments{
		OtherIncome:    a.OtherIncome.Float(),
		Bonuses:        a.Bonuses.Float(),
		VT:             a.VT,
		BasicBasket:    a.BasicBasket.Float(),
		OT100:          a.OT100.Float(),
		OT70:           a.OT70.Float(),
		OT50:           a.OT50.Float(),
		VR:             a.VR.Float(),
		Advances:       a.Advances.Float(),
		Absences:       a.Absences.Float(),
		Loans:          a.Loans.Float(),
		OtherDiscounts: a.OtherDiscounts.Float(),
		Pharmacy:       a.Pharmacy.Float(),
		Supermarket:    a.Supermarket.Float(),
		Dental:         a.Dental.Float(),
		Medical:        a.Medical.Float(),
		OtherConvenios: a.OtherConvenios.Float(),
		Observations:   a.Observations,
	}
}

type recordRequest struct {
	EmployeeID  string             `json:"employeeId"`
	ClosingDate string             `json:"closingDate"`
	Adjustments adjustmentsRequest `json:"adjustments"`
}

type worksheetRequest struct {
	ClosingDate string                        `json:"closingDate"`
	Company     string                        `json:"company"`
	Entries     map[string]adjustmentsRequest `json:"entries"`
	Confirm     bool                          `json:"confirm"`
}

func (p worksheetRequest) worksheet(company core.Company) *payroll.Worksheet {
	ws := payroll.NewWorksheet(strings.TrimSpace(p.ClosingDate), company)
	for id, adj := range p.Entries {
		ws.Set(id, adj.adjustments())
	}
	return ws
}

type advanceExtraRequest struct {
	OtherAdvances core.Amount `json:"otherAdvances"`
	Observations  string      `json:"observations"`
}

type advancesRequest struct {
	PeriodStart string                         `json:"periodStart"`
	PeriodEnd   string                         `json:"periodEnd"`
	Extras      map[string]advanceExtraRequest `json:"extras"`
}

func (p advancesRequest) sheet() payroll.AdvanceSheet {
	sheet := payroll.AdvanceSheet{
		PeriodStart: strings.TrimSpace(p.PeriodStart),
		PeriodEnd:   strings.TrimSpace(p.PeriodEnd),
		Extras:      make(map[string]payroll.AdvanceExtra, len(p.Extras)),
	}
	for id, extra := range p.Extras {
		sheet.Extras[id] = payroll.AdvanceExtra{OtherAdvances: extra.OtherAdvances.Float(), Observations: extra.Observations}
	}
	return sheet
}
