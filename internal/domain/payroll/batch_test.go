package payroll

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rhmaster/internal/domain/core"
)

type recordingInserter struct {
	calls   int
	records []Record
	err     error
}

func (r *recordingInserter) CreateRecords(_ context.Context, records []Record) ([]Record, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.records = append(r.records, records...)
	return records, nil
}

func roster() []core.Employee {
	return []core.Employee{
		{ID: "a", Name: "Ana", Company: core.CompanyCampluvas, Salary: 3000},
		{ID: "b", Name: "Bruno", Company: core.CompanyLocatex, Salary: 2400},
		{ID: "c", Name: "Carla", Company: core.CompanyLocatex, Salary: 1800},
	}
}

func TestPrefillPicksChronologicallyLatest(t *testing.T) {
	records := []Record{
		{ID: "r1", EmployeeID: "a", ClosingDate: "15/12/2023", Adjustments: Adjustments{Bonuses: 100}},
		{ID: "r2", EmployeeID: "a", ClosingDate: "05/01/2024", Adjustments: Adjustments{Bonuses: 200}},
	}
	ws := NewWorksheet("05/02/2024", core.CompanyNone)
	if filled := ws.PrefillFromPrior(roster(), records); filled != 1 {
		t.Fatalf("expected 1 employee filled, got %d", filled)
	}
	if got := ws.Entry("a").Bonuses; got != 200 {
		t.Fatalf("expected the 05/01/2024 record (bonuses 200), got %v", got)
	}
}

func TestLatestRecordDatesAndTies(t *testing.T) {
	records := []Record{
		{ID: "bad", EmployeeID: "a", ClosingDate: "not a date"},
		{ID: "new", EmployeeID: "a", ClosingDate: "01/03/2024"},
		{ID: "old", EmployeeID: "a", ClosingDate: "01/03/2024"},
		{ID: "other", EmployeeID: "b", ClosingDate: "01/01/2030"},
	}
	rec, ok := LatestRecord(records, "a")
	if !ok || rec.ID != "new" {
		t.Fatalf("expected newest created dated record, got %+v", rec)
	}
	rec, ok = LatestRecord(records[:1], "a")
	if !ok || rec.ID != "bad" {
		t.Fatalf("expected undated record when nothing else exists, got %+v", rec)
	}
	if _, ok := LatestRecord(records, "zzz"); ok {
		t.Fatal("expected no record for unknown employee")
	}
}

func TestPrefillCopiesOnlyVisible(t *testing.T) {
	records := []Record{
		{EmployeeID: "a", ClosingDate: "01/01/2024", Adjustments: Adjustments{Loans: 10}},
		{EmployeeID: "b", ClosingDate: "01/01/2024", Adjustments: Adjustments{Loans: 20, VT: true, Observations: "x"}},
	}
	ws := NewWorksheet("01/02/2024", core.CompanyLocatex)
	if filled := ws.PrefillFromPrior(roster(), records); filled != 1 {
		t.Fatalf("expected only Locatex employee filled, got %d", filled)
	}
	if ws.Entry("a").Loans != 0 {
		t.Fatal("hidden employee should not be filled")
	}
	if got := ws.Entry("b"); got.Loans != 20 || !got.VT || got.Observations != "x" {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	ws := NewWorksheet("01/02/2024", core.CompanyLocatex)
	ws.Set("a", Adjustments{Bonuses: 1})
	ws.Set("b", Adjustments{Bonuses: 2})

	var prompt string
	err := ws.Clear(roster(), func(p string) bool { prompt = p; return false })
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if prompt == "" || ws.Entry("b").Bonuses != 2 {
		t.Fatal("declined clear must not change the worksheet")
	}

	if err := ws.Clear(roster(), Confirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.Entry("b").Bonuses != 0 {
		t.Fatal("visible entry should be reset")
	}
	if ws.Entry("a").Bonuses != 1 {
		t.Fatal("hidden entry should be kept")
	}
}

func TestFinalizeSubmitsOneBatch(t *testing.T) {
	ws := NewWorksheet("31/01/2024", core.CompanyLocatex)
	ws.Set("b", Adjustments{Bonuses: 50})
	inserter := &recordingInserter{}

	var prompt string
	saved, err := ws.Finalize(context.Background(), roster(), inserter, func(p string) bool { prompt = p; return true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserter.calls != 1 || len(saved) != 2 {
		t.Fatalf("expected one call with 2 records, got %d calls %d records", inserter.calls, len(saved))
	}
	if !strings.Contains(prompt, "2 employees") || !strings.Contains(prompt, "LOCATEX") {
		t.Fatalf("prompt should state count and company, got %q", prompt)
	}
	for _, rec := range saved {
		if rec.ClosingDate != "31/01/2024" {
			t.Fatalf("expected shared closing date, got %s", rec.ClosingDate)
		}
	}
	if saved[0].EmployeeID != "b" || saved[0].Bonuses != 50 {
		t.Fatalf("unexpected first record %+v", saved[0])
	}
}

func TestFinalizeDeclinedOrEmpty(t *testing.T) {
	inserter := &recordingInserter{}
	ws := NewWorksheet("31/01/2024", core.CompanyNone)
	if _, err := ws.Finalize(context.Background(), roster(), inserter, func(string) bool { return false }); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if _, err := ws.Finalize(context.Background(), nil, inserter, Confirmed); !errors.Is(err, ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}
	if inserter.calls != 0 {
		t.Fatalf("expected no inserts, got %d", inserter.calls)
	}

	inserter.err = errors.New("boom")
	if _, err := ws.Finalize(context.Background(), roster(), inserter, Confirmed); err == nil {
		t.Fatal("expected inserter error to surface")
	}
}

func TestWorksheetLines(t *testing.T) {
	ws := NewWorksheet("31/01/2024", core.CompanyNone)
	ws.Set("a", Adjustments{Absences: 1})
	lines := ws.Lines(roster(), NewCalculator(AbsenceProratedDays))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Net != 2900 {
		t.Fatalf("expected 2900, got %v", lines[0].Net)
	}
}
