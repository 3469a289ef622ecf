package payroll

import (
	"bytes"
	"errors"
	"testing"

	"rhmaster/internal/domain/core"
)

func TestHistoryToleratesUnknownEmployees(t *testing.T) {
	records := []Record{
		{ID: "r1", EmployeeID: "a", ClosingDate: "31/01/2024"},
		{ID: "r2", EmployeeID: "ghost", ClosingDate: "31/01/2024"},
	}
	rows, err := History(records, roster(), NewCalculator(AbsenceProratedDays), OrphanTolerate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EmployeeName != "Ana" || rows[0].Net != 3000 || !rows[0].Known {
		t.Fatalf("unexpected known row %+v", rows[0])
	}
	if rows[1].EmployeeName != UnknownEmployee || rows[1].Company != MissingValue || rows[1].Known {
		t.Fatalf("unexpected placeholder row %+v", rows[1])
	}
}

func TestHistoryRejectsUnknownEmployees(t *testing.T) {
	records := []Record{{ID: "r2", EmployeeID: "ghost"}}
	if _, err := History(records, roster(), Calculator{}, OrphanReject); !errors.Is(err, ErrOrphanRecord) {
		t.Fatalf("expected ErrOrphanRecord, got %v", err)
	}
	if _, err := ParseOrphanPolicy("ignore"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	rec := Record{
		ID:          "r1",
		EmployeeID:  "a",
		ClosingDate: "05/01/2024",
		Adjustments: Adjustments{OtherIncome: 10.5, VT: true, OT70: 2, Absences: 1, OtherConvenios: 33.33, Observations: "ok"},
	}
	row := RecordToRow(rec)
	if row.ClosingDate != "2024-01-05" || row.OtherIncome != "10.5" || !row.VT {
		t.Fatalf("unexpected row %+v", row)
	}
	if back := RecordFromRow(row); back != rec {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, rec)
	}
	if empty := RecordFromRow(RecordRow{ID: "x"}); empty.Loans != 0 || empty.VT {
		t.Fatalf("expected defaults, got %+v", empty)
	}
}

func TestWritePayslipPDF(t *testing.T) {
	emp := core.Employee{ID: "a", Name: "João", Company: core.CompanyLocatex, Salary: 3000}
	rec := Record{ID: "r1", EmployeeID: "a", ClosingDate: "31/01/2024", Adjustments: Adjustments{Bonuses: 10, Observations: "Observação"}}
	var buf bytes.Buffer
	if err := WritePayslipPDF(&buf, emp, rec, NewCalculator(AbsenceProratedDays)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a pdf document")
	}
}
