package payrollhandler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
	"rhmaster/internal/requestctx"
	"rhmaster/internal/store"
	"rhmaster/internal/transport/http/api"
	"rhmaster/internal/transport/http/middleware"
	"rhmaster/internal/transport/http/shared"
)

type Handler struct {
	Store   *store.Store
	Calc    payroll.Calculator
	Orphans payroll.OrphanPolicy
	// Replays makes record writes safe to retry with an Idempotency-Key.
	Replays *middleware.IdempotencyStore
	Now     func() time.Time
}

func NewHandler(st *store.Store, calc payroll.Calculator, orphans payroll.OrphanPolicy, replays *middleware.IdempotencyStore) *Handler {
	return &Handler{Store: st, Calc: calc, Orphans: orphans, Replays: replays, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	idempotent := middleware.Idempotency(h.Replays)
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/preview", h.handlePreview)
		r.Get("/records", h.handleHistory)
		r.With(idempotent).Post("/records", h.handleCreateRecord)
		r.Get("/records/{recordID}/payslip", h.handlePayslip)

		r.Route("/batch", func(r chi.Router) {
			r.Post("/prefill", h.handleBatchPrefill)
			r.Post("/lines", h.handleBatchLines)
			r.Post("/clear", h.handleBatchClear)
			r.With(idempotent).Post("/finalize", h.handleBatchFinalize)
			r.Post("/export", h.handleBatchExport)
		})

		r.Post("/advances", h.handleAdvances)
		r.Post("/advances/export", h.handleAdvancesExport)
	})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload recordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	emp, ok := core.Find(h.Store.Employees(r.Context()), payload.EmployeeID)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrEmployeeNotFound.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Calc.Compute(emp, payload.Adjustments.adjustments()), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := payroll.History(h.Store.Records(r.Context()), h.Store.Employees(r.Context()), h.Calc, h.Orphans)
	if errors.Is(err, payroll.ErrOrphanRecord) {
		api.Fail(w, http.StatusUnprocessableEntity, "orphan_record", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to build payroll history", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 0, 1000)
	api.Success(w, map[string]any{
		"records": shared.Page(rows, page),
		"total":   len(rows),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "select an employee")
	v.Date("closingDate", payload.ClosingDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	emp, ok := core.Find(h.Store.Employees(r.Context()), payload.EmployeeID)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrEmployeeNotFound.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	adj := payload.Adjustments.adjustments()
	saved, err := h.Store.CreateRecord(r.Context(), payroll.NewRecord(emp.ID, payload.ClosingDate, adj))
	if err != nil {
		h.failWrite(w, r, err)
		return
	}
	api.Created(w, map[string]any{
		"record":    saved,
		"breakdown": h.Calc.Compute(emp, adj),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	var rec payroll.Record
	found := false
	for _, candidate := range h.Store.Records(r.Context()) {
		if candidate.ID == recordID {
			rec, found = candidate, true
			break
		}
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", middleware.GetRequestID(r.Context()))
		return
	}
	emp, ok := core.Find(h.Store.Employees(r.Context()), rec.EmployeeID)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrEmployeeNotFound.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := payroll.WritePayslipPDF(&buf, emp, rec, h.Calc); err != nil {
		requestctx.Logger(r.Context()).Error("payslip render failed", zap.String("record_id", rec.ID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "application/pdf", "holerite_"+rec.ID+".pdf", buf.Bytes())
}

// decodeWorksheet reads and validates a worksheet body, answering the
// request itself on failure.
func decodeWorksheet(w http.ResponseWriter, r *http.Request) (worksheetRequest, *payroll.Worksheet, bool) {
	var payload worksheetRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, nil, false
	}
	v := shared.NewValidator()
	v.Date("closingDate", payload.ClosingDate)
	company := v.Company("company", payload.Company, true)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, nil, false
	}
	return payload, payload.worksheet(company), true
}

type worksheetResponse struct {
	ClosingDate string                         `json:"closingDate"`
	Company     core.Company                   `json:"company"`
	Entries     map[string]payroll.Adjustments `json:"entries"`
	Filled      int                            `json:"filled,omitempty"`
}

func (h *Handler) handleBatchPrefill(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := decodeWorksheet(w, r)
	if !ok {
		return
	}
	filled := ws.PrefillFromPrior(h.Store.Employees(r.Context()), h.Store.Records(r.Context()))
	api.Success(w, worksheetResponse{
		ClosingDate: ws.ClosingDate,
		Company:     ws.Company,
		Entries:     ws.Entries(),
		Filled:      filled,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatchLines(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := decodeWorksheet(w, r)
	if !ok {
		return
	}
	api.Success(w, ws.Lines(h.Store.Employees(r.Context()), h.Calc), middleware.GetRequestID(r.Context()))
}

// confirmation answers prompts with the request's confirm flag and keeps
// the last prompt for the 412 response.
type confirmation struct {
	approved bool
	prompt   string
}

func (c *confirmation) ask(prompt string) bool {
	c.prompt = prompt
	return c.approved
}

func failUnconfirmed(w http.ResponseWriter, r *http.Request, prompt string) {
	api.FailWithDetails(w, http.StatusPreconditionFailed, "confirmation_required", prompt,
		map[string]string{"prompt": prompt}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatchClear(w http.ResponseWriter, r *http.Request) {
	payload, ws, ok := decodeWorksheet(w, r)
	if !ok {
		return
	}
	confirm := &confirmation{approved: payload.Confirm}
	if err := ws.Clear(h.Store.Employees(r.Context()), confirm.ask); err != nil {
		failUnconfirmed(w, r, confirm.prompt)
		return
	}
	api.Success(w, worksheetResponse{
		ClosingDate: ws.ClosingDate,
		Company:     ws.Company,
		Entries:     ws.Entries(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatchFinalize(w http.ResponseWriter, r *http.Request) {
	payload, ws, ok := decodeWorksheet(w, r)
	if !ok {
		return
	}
	confirm := &confirmation{approved: payload.Confirm}
	saved, err := ws.Finalize(r.Context(), h.Store.Employees(r.Context()), h.Store, confirm.ask)
	switch {
	case errors.Is(err, payroll.ErrNotConfirmed):
		failUnconfirmed(w, r, confirm.prompt)
		return
	case errors.Is(err, payroll.ErrNothingToSave):
		api.Fail(w, http.StatusUnprocessableEntity, "nothing_to_save", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		h.failWrite(w, r, err)
		return
	}
	requestctx.Logger(r.Context()).Info("payroll batch finalized",
		zap.String("closing_date", ws.ClosingDate),
		zap.String("company", ws.Company.Label()),
		zap.Int("records", len(saved)))
	api.Created(w, map[string]any{"records": saved, "count": len(saved)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatchExport(w http.ResponseWriter, r *http.Request) {
	_, ws, ok := decodeWorksheet(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := payroll.WriteBatchCSV(&buf, ws.Lines(h.Store.Employees(r.Context()), h.Calc)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export payroll", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "text/csv; charset=utf-8", payroll.BatchFileName(ws.Company, ws.ClosingDate), buf.Bytes())
}

func decodeAdvances(w http.ResponseWriter, r *http.Request) (payroll.AdvanceSheet, bool) {
	var payload advancesRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payroll.AdvanceSheet{}, false
	}
	v := shared.NewValidator()
	if payload.PeriodStart != "" {
		v.Date("periodStart", payload.PeriodStart)
	}
	if payload.PeriodEnd != "" {
		v.Date("periodEnd", payload.PeriodEnd)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payroll.AdvanceSheet{}, false
	}
	return payload.sheet(), true
}

func (h *Handler) handleAdvances(w http.ResponseWriter, r *http.Request) {
	sheet, ok := decodeAdvances(w, r)
	if !ok {
		return
	}
	lines := sheet.Lines(h.Store.Employees(r.Context()))
	api.Success(w, map[string]any{
		"periodStart": sheet.PeriodStart,
		"periodEnd":   sheet.PeriodEnd,
		"lines":       lines,
		"grandTotal":  payroll.AdvanceGrandTotal(lines),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAdvancesExport(w http.ResponseWriter, r *http.Request) {
	sheet, ok := decodeAdvances(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := payroll.WriteAdvancesCSV(&buf, sheet, sheet.Lines(h.Store.Employees(r.Context()))); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export advances", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "text/csv; charset=utf-8", payroll.AdvancesFileName(h.Now()), buf.Bytes())
}

func (h *Handler) failWrite(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrConflict) {
		api.Fail(w, http.StatusConflict, "record_conflict", "saved locally but the remote store rejected the records", middleware.GetRequestID(r.Context()))
		return
	}
	requestctx.Logger(r.Context()).Error("payroll write failed", zap.Error(err))
	api.Fail(w, http.StatusInternalServerError, "payroll_write_failed", "failed to save payroll", middleware.GetRequestID(r.Context()))
}
