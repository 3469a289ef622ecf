package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"rhmaster/internal/domain/core"
)

// WritePayslipPDF renders the payslip of one stored record.
func WritePayslipPDF(w io.Writer, emp core.Employee, rec Record, calc Calculator) error {
	result := calc.Compute(emp, rec.Adjustments)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s", emp.Name)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Company: %s   Role: %s", orMissing(string(emp.Company)), emp.Role)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Closing date: %s", rec.ClosingDate))
	pdf.Ln(10)

	lines := []struct {
		label string
		value float64
	}{
		{"Base salary", emp.Salary},
		{"Role accumulation", emp.RoleAccumulation},
		{"Other income", rec.OtherIncome},
		{"Bonuses", rec.Bonuses},
		{"Basic basket", rec.BasicBasket},
		{"Meal voucher", rec.VR},
		{"Advances", -rec.Advances},
		{"Absences", -result.Absence},
		{"Loans", -rec.Loans},
		{"Pharmacy", -rec.Pharmacy},
		{"Supermarket", -rec.Supermarket},
		{"Dental", -rec.Dental},
		{"Medical", -rec.Medical},
		{"Other agreements", -rec.OtherConvenios},
		{"Other discounts", -rec.OtherDiscounts},
	}
	for _, line := range lines {
		if line.value == 0 {
			continue
		}
		pdf.CellFormat(120, 7, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, FormatAmount(line.value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Gross", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, FormatAmount(result.Earnings), "T", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Deductions", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, FormatAmount(result.Deductions), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Net", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, FormatAmount(result.Net), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Overtime hours: 100%% %s  70%% %s  50%% %s   VT: %s",
		FormatAmount(rec.OT100), FormatAmount(rec.OT70), FormatAmount(rec.OT50), tr(yesNo(rec.VT))))
	if rec.Observations != "" {
		pdf.Ln(6)
		pdf.MultiCell(0, 6, tr(rec.Observations), "", "L", false)
	}

	return pdf.Output(w)
}
