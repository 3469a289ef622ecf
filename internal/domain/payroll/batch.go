package payroll

import (
	"context"
	"fmt"

	"rhmaster/internal/domain/core"
)

// Confirm asks the operator to approve a destructive or committing action.
type Confirm func(prompt string) bool

// Confirmed approves every prompt.
func Confirmed(string) bool { return true }

// BatchInserter persists a set of records in one call.
type BatchInserter interface {
	CreateRecords(ctx context.Context, records []Record) ([]Record, error)
}

// Worksheet is the working set of one monthly closing: one Adjustments per
// employee, filtered by company.
type Worksheet struct {
	ClosingDate string
	Company     core.Company
	entries     map[string]Adjustments
}

func NewWorksheet(closingDate string, company core.Company) *Worksheet {
	return &Worksheet{ClosingDate: closingDate, Company: company, entries: map[string]Adjustments{}}
}

// Visible is the part of the roster the worksheet currently acts on.
func (w *Worksheet) Visible(roster []core.Employee) []core.Employee {
	return core.ByCompany(roster, w.Company)
}

// Entry returns the adjustments for employeeID, zero values when unset.
func (w *Worksheet) Entry(employeeID string) Adjustments {
	return w.entries[employeeID]
}

func (w *Worksheet) Set(employeeID string, adj Adjustments) {
	w.entries[employeeID] = adj
}

// Entries returns a copy of every entry keyed by employee id.
func (w *Worksheet) Entries() map[string]Adjustments {
	out := make(map[string]Adjustments, len(w.entries))
	for id, adj := range w.entries {
		out[id] = adj
	}
	return out
}

// LatestRecord returns the record of employeeID with the chronologically
// latest closing date. Records with unparsable dates only win when nothing
// else exists; on equal dates the earlier entry in records wins, which is
// the newest created since history is kept newest first.
func LatestRecord(records []Record, employeeID string) (Record, bool) {
	var (
		best    Record
		bestDay int64
		found   bool
		dated   bool
	)
	for _, rec := range records {
		if rec.EmployeeID != employeeID {
			continue
		}
		day, ok := core.DayNumber(rec.ClosingDate)
		switch {
		case !found:
			best, bestDay, dated, found = rec, day, ok, true
		case ok && (!dated || day > bestDay):
			best, bestDay, dated = rec, day, true
		}
	}
	return best, found
}

// PrefillFromPrior copies the adjustments of each visible employee's latest
// record into the worksheet and returns how many employees were filled.
func (w *Worksheet) PrefillFromPrior(roster []core.Employee, records []Record) int {
	filled := 0
	for _, emp := range w.Visible(roster) {
		rec, ok := LatestRecord(records, emp.ID)
		if !ok {
			continue
		}
		w.entries[emp.ID] = rec.Adjustments
		filled++
	}
	return filled
}

func (w *Worksheet) clearPrompt() string {
	return "This resets every value visible in the grid. Continue?"
}

// Clear resets the visible entries to defaults once confirmed.
func (w *Worksheet) Clear(roster []core.Employee, confirm Confirm) error {
	if confirm == nil || !confirm(w.clearPrompt()) {
		return ErrNotConfirmed
	}
	for _, emp := range w.Visible(roster) {
		w.entries[emp.ID] = Adjustments{}
	}
	return nil
}

func (w *Worksheet) finalizePrompt(count int) string {
	scope := "all companies"
	if w.Company != core.CompanyNone {
		scope = string(w.Company)
	}
	return fmt.Sprintf("Save the payroll of %d employees (%s) closing %s?", count, scope, w.ClosingDate)
}

// Build creates one unsaved record per visible employee sharing the
// worksheet closing date.
func (w *Worksheet) Build(roster []core.Employee) []Record {
	visible := w.Visible(roster)
	records := make([]Record, 0, len(visible))
	for _, emp := range visible {
		records = append(records, NewRecord(emp.ID, w.ClosingDate, w.entries[emp.ID]))
	}
	return records
}

// Finalize submits the visible records as one batch once confirmed.
func (w *Worksheet) Finalize(ctx context.Context, roster []core.Employee, inserter BatchInserter, confirm Confirm) ([]Record, error) {
	records := w.Build(roster)
	if len(records) == 0 {
		return nil, ErrNothingToSave
	}
	if confirm == nil || !confirm(w.finalizePrompt(len(records))) {
		return nil, ErrNotConfirmed
	}
	saved, err := inserter.CreateRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("finalize closing %s: %w", w.ClosingDate, err)
	}
	return saved, nil
}

// Line is one computed row of the worksheet.
type Line struct {
	Employee    core.Employee `json:"employee"`
	Adjustments Adjustments   `json:"adjustments"`
	Breakdown
}

// Lines computes the net pay of every visible employee.
func (w *Worksheet) Lines(roster []core.Employee, calc Calculator) []Line {
	visible := w.Visible(roster)
	lines := make([]Line, 0, len(visible))
	for _, emp := range visible {
		adj := w.entries[emp.ID]
		lines = append(lines, Line{Employee: emp, Adjustments: adj, Breakdown: calc.Compute(emp, adj)})
	}
	return lines
}
