package payroll

import (
	"time"

	"rhmaster/internal/domain/core"
)

// RecordRow is the storage shape of a payroll record.
type RecordRow struct {
	ID             string       `json:"id"`
	EmployeeID     string       `json:"employee_id"`
	ClosingDate    string       `json:"closing_date"`
	OtherIncome    core.Numeric `json:"other_income"`
	Bonuses        core.Numeric `json:"bonuses"`
	VT             bool         `json:"vt"`
	BasicBasket    core.Numeric `json:"basic_basket"`
	OT100          core.Numeric `json:"ot100"`
	OT70           core.Numeric `json:"ot70"`
	OT50           core.Numeric `json:"ot50"`
	VR             core.Numeric `json:"vr"`
	Advances       core.Numeric `json:"advances"`
	Absences       core.Numeric `json:"absences"`
	Loans          core.Numeric `json:"loans"`
	OtherDiscounts core.Numeric `json:"other_discounts"`
	Pharmacy       core.Numeric `json:"pharmacy"`
	Supermarket    core.Numeric `json:"supermarket"`
	Dental         core.Numeric `json:"dental"`
	Medical        core.Numeric `json:"medical"`
	OtherConvenios core.Numeric `json:"other_convenios"`
	Observations   string       `json:"observations"`
	CreatedAt      time.Time    `json:"created_at"`
}

func RecordToRow(rec Record) RecordRow {
	return RecordRow{
		ID:             rec.ID,
		EmployeeID:     rec.EmployeeID,
		ClosingDate:    core.DateToISO(rec.ClosingDate),
		OtherIncome:    core.NumericOf(rec.OtherIncome),
		Bonuses:        core.NumericOf(rec.Bonuses),
		VT:             rec.VT,
		BasicBasket:    core.NumericOf(rec.BasicBasket),
		OT100:          core.NumericOf(rec.OT100),
		OT70:           core.NumericOf(rec.OT70),
		OT50:           core.NumericOf(rec.OT50),
		VR:             core.NumericOf(rec.VR),
		Advances:       core.NumericOf(rec.Advances),
		Absences:       core.NumericOf(rec.Absences),
		Loans:          core.NumericOf(rec.Loans),
		OtherDiscounts: core.NumericOf(rec.OtherDiscounts),
		Pharmacy:       core.NumericOf(rec.Pharmacy),
		Supermarket:    core.NumericOf(rec.Supermarket),
		Dental:         core.NumericOf(rec.Dental),
		Medical:        core.NumericOf(rec.Medical),
		OtherConvenios: core.NumericOf(rec.OtherConvenios),
		Observations:   rec.Observations,
		CreatedAt:      rec.CreatedAt,
	}
}

func RecordFromRow(row RecordRow) Record {
	return Record{
		ID:          row.ID,
		EmployeeID:  row.EmployeeID,
		ClosingDate: core.DateFromISO(row.ClosingDate),
		CreatedAt:   row.CreatedAt,
		Adjustments: Adjustments{
			OtherIncome:    row.OtherIncome.Float(),
			Bonuses:        row.Bonuses.Float(),
			VT:             row.VT,
			BasicBasket:    row.BasicBasket.Float(),
			OT100:          row.OT100.Float(),
			OT70:           row.OT70.Float(),
			OT50:           row.OT50.Float(),
			VR:             row.VR.Float(),
			Advances:       row.Advances.Float(),
			Absences:       row.Absences.Float(),
			Loans:          row.Loans.Float(),
			OtherDiscounts: row.OtherDiscounts.Float(),
			Pharmacy:       row.Pharmacy.Float(),
			Supermarket:    row.Supermarket.Float(),
			Dental:         row.Dental.Float(),
			Medical:        row.Medical.Float(),
			OtherConvenios: row.OtherConvenios.Float(),
			Observations:   row.Observations,
		},
	}
}
