package corehandler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
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
	Store *store.Store
	Now   func() time.Time
}

func NewHandler(st *store.Store) *Handler {
	return &Handler{Store: st, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Get("/export", h.handleExportEmployees)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEmployee)
			r.Put("/", h.handleUpdateEmployee)
		})
	})
	r.Get("/dashboard/summary", h.handleSummary)
}

// employeeRequest accepts amounts as numbers or formatted strings.
type employeeRequest struct {
	Name             string      `json:"name"`
	Company          string      `json:"company"`
	AdmissionDate    string      `json:"admissionDate"`
	DismissalDate    string      `json:"dismissalDate"`
	BirthDate        string      `json:"birthDate"`
	Address          string      `json:"address"`
	City             string      `json:"city"`
	State            string      `json:"state"`
	CEP              string      `json:"cep"`
	Phone            string      `json:"phone"`
	FatherName       string      `json:"fatherName"`
	MotherName       string      `json:"motherName"`
	CPF              string      `json:"cpf"`
	RG               string      `json:"rg"`
	CTPS             string      `json:"ctps"`
	PIS              string      `json:"pis"`
	VoterID          string      `json:"voterId"`
	Role             string      `json:"role"`
	Salary           core.Amount `json:"salary"`
	RoleAccumulation core.Amount `json:"roleAccumulation"`
}

func (p employeeRequest) employee(id string) core.Employee {
	return core.Employee{
		ID:               id,
		Name:             strings.TrimSpace(p.Name),
		Company:          core.Company(strings.ToUpper(strings.TrimSpace(p.Company))),
		AdmissionDate:    strings.TrimSpace(p.AdmissionDate),
		DismissalDate:    strings.TrimSpace(p.DismissalDate),
		BirthDate:        strings.TrimSpace(p.BirthDate),
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		CEP:              p.CEP,
		Phone:            p.Phone,
		FatherName:       p.FatherName,
		MotherName:       p.MotherName,
		CPF:              strings.TrimSpace(p.CPF),
		RG:               p.RG,
		CTPS:             p.CTPS,
		PIS:              p.PIS,
		VoterID:          p.VoterID,
		Role:             strings.TrimSpace(p.Role),
		Salary:           p.Salary.Float(),
		RoleAccumulation: p.RoleAccumulation.Float(),
	}
}

func rosterFilter(r *http.Request) (string, core.Company, bool) {
	company, err := core.ParseCompany(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("company"))))
	if err != nil {
		return "", core.CompanyNone, false
	}
	return r.URL.Query().Get("q"), company, true
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	term, company, ok := rosterFilter(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_company", "unknown company filter", middleware.GetRequestID(r.Context()))
		return
	}
	employees := core.FilterRoster(h.Store.Employees(r.Context()), term, company)
	page := shared.ParsePagination(r, 0, 500)
	api.Success(w, map[string]any{
		"employees": shared.Page(employees, page),
		"total":     len(employees),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := core.Find(h.Store.Employees(r.Context()), chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	emp := payload.employee("")
	if err := core.ValidateRegistration(emp); err != nil {
		v := shared.NewValidator()
		v.Err(err)
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	saved, err := h.Store.CreateEmployee(r.Context(), emp)
	if err != nil {
		h.failWrite(w, r, err, saved.ID != "")
		return
	}
	requestctx.Logger(r.Context()).Info("employee registered", zap.String("employee_id", saved.ID))
	api.Created(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	emp := payload.employee(chi.URLParam(r, "employeeID"))
	if err := core.ValidateEmployee(emp); err != nil {
		v := shared.NewValidator()
		v.Err(err)
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	saved, err := h.Store.UpdateEmployee(r.Context(), emp)
	if errors.Is(err, store.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		h.failWrite(w, r, err, saved.ID != "")
		return
	}
	api.Success(w, saved, middleware.GetRequestID(r.Context()))
}

// failWrite maps store write errors. A conflict reported after the local
// write is still a 409, with a message saying the data was kept.
func (h *Handler) failWrite(w http.ResponseWriter, r *http.Request, err error, keptLocally bool) {
	if errors.Is(err, store.ErrConflict) {
		message := "an employee with this CPF already exists"
		if keptLocally {
			message = "saved locally but the remote store rejected it: an employee with this CPF already exists"
		}
		api.Fail(w, http.StatusConflict, "employee_exists", message, middleware.GetRequestID(r.Context()))
		return
	}
	requestctx.Logger(r.Context()).Error("employee write failed", zap.Error(err))
	api.Fail(w, http.StatusInternalServerError, "employee_write_failed", "failed to save employee", middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEmployees(w http.ResponseWriter, r *http.Request) {
	term, company, ok := rosterFilter(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_company", "unknown company filter", middleware.GetRequestID(r.Context()))
		return
	}
	employees := core.FilterRoster(h.Store.Employees(r.Context()), term, company)
	var buf bytes.Buffer
	if err := payroll.WriteRosterCSV(&buf, employees); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export roster", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, "text/csv; charset=utf-8", payroll.RosterFileName(h.Now()), buf.Bytes())
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	employees := h.Store.Employees(r.Context())
	records := h.Store.Records(r.Context())
	api.Success(w, core.Summarize(employees, len(records)), middleware.GetRequestID(r.Context()))
}
