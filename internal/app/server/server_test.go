package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"rhmaster/internal/app/server"
	"rhmaster/internal/domain/auth"
	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
	"rhmaster/internal/platform/config"
	"rhmaster/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "test",
		LocalSnapshotPath:  "unused.json",
		AbsencePolicy:      "per_day",
		OrphanRecordPolicy: "tolerate",
		RemotePingTimeout:  time.Second,
		TokenTTL:           time.Hour,
		MaxBodyBytes:       1048576,
	}
}

func newServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	app, err := server.New(context.Background(), cfg, server.Options{Local: store.NewMemoryMirror()})
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	return callWithHeaders(t, ts, method, path, token, nil, body)
}

func callWithHeaders(t *testing.T, ts *httptest.Server, method, path, token string, headers map[string]string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, ts.URL+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp, env
}

func validEmployee(name, cpf string) map[string]any {
	return map[string]any{
		"name":          name,
		"company":       "LOCATEX",
		"cpf":           cpf,
		"role":          "Motorista",
		"admissionDate": "01/02/2023",
		"salary":        "3.000,00",
	}
}

func TestRegistrationAndPayrollJourney(t *testing.T) {
	ts := newServer(t, testConfig())

	resp, env := call(t, ts, http.MethodPost, "/api/v1/employees", "", validEmployee("João da Silva", "529.982.247-25"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", resp.StatusCode, env.Error)
	}
	var emp struct {
		ID     string  `json:"id"`
		Salary float64 `json:"salary"`
	}
	_ = json.Unmarshal(env.Data, &emp)
	if emp.ID == "" || emp.Salary != 3000 {
		t.Fatalf("unexpected employee %+v", emp)
	}

	resp, env = call(t, ts, http.MethodPost, "/api/v1/employees", "", validEmployee("Outro Nome", "52998224725"))
	if resp.StatusCode != http.StatusConflict || env.Error.Code != "employee_exists" {
		t.Fatalf("expected 409 employee_exists, got %d %+v", resp.StatusCode, env.Error)
	}

	resp, env = call(t, ts, http.MethodGet, "/api/v1/employees?q=joao&company=LOCATEX", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(env.Data, &list)
	if list.Total != 1 {
		t.Fatalf("expected accent-insensitive match, got %d", list.Total)
	}

	record := map[string]any{
		"employeeId":  emp.ID,
		"closingDate": "31/01/2024",
		"adjustments": map[string]any{"bonuses": "200,00", "absences": 1, "vt": true},
	}
	resp, env = call(t, ts, http.MethodPost, "/api/v1/payroll/records", "", record)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", resp.StatusCode, env.Error)
	}
	var created struct {
		Record struct {
			ID string `json:"id"`
		} `json:"record"`
		Breakdown struct {
			Net float64 `json:"net"`
		} `json:"breakdown"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.Breakdown.Net != 3100 {
		t.Fatalf("expected net 3100, got %v", created.Breakdown.Net)
	}

	resp, env = call(t, ts, http.MethodGet, "/api/v1/payroll/records", "", nil)
	var history struct {
		Total   int `json:"total"`
		Records []struct {
			EmployeeName string  `json:"employeeName"`
			Net          float64 `json:"net"`
		} `json:"records"`
	}
	_ = json.Unmarshal(env.Data, &history)
	if resp.StatusCode != http.StatusOK || history.Total != 1 || history.Records[0].EmployeeName != "João da Silva" {
		t.Fatalf("unexpected history %d %+v", resp.StatusCode, history)
	}

	resp, _ = call(t, ts, http.MethodGet, "/api/v1/payroll/records/"+created.Record.ID+"/payslip", "", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf payslip, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestRegistrationValidationMessages(t *testing.T) {
	ts := newServer(t, testConfig())
	payload := validEmployee("Jo", "529.982.247-25")
	resp, env := call(t, ts, http.MethodPost, "/api/v1/employees", "", payload)
	if resp.StatusCode != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %d %+v", resp.StatusCode, env.Error)
	}
	if env.Error.Message != "enter the full name" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}

	payload = validEmployee("Maria Souza", "529.982.247-24")
	_, env = call(t, ts, http.MethodPost, "/api/v1/employees", "", payload)
	if env.Error == nil || env.Error.Message != "cpf is invalid, check the digits" {
		t.Fatalf("expected checksum failure, got %+v", env.Error)
	}
}

func TestBatchFinalizeRequiresConfirmation(t *testing.T) {
	ts := newServer(t, testConfig())
	call(t, ts, http.MethodPost, "/api/v1/employees", "", validEmployee("Ana Paula", "529.982.247-25"))

	sheet := map[string]any{"closingDate": "31/01/2024", "company": "LOCATEX"}
	resp, env := call(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", sheet)
	if resp.StatusCode != http.StatusPreconditionFailed || env.Error.Code != "confirmation_required" {
		t.Fatalf("expected 412, got %d %+v", resp.StatusCode, env.Error)
	}
	if !strings.Contains(env.Error.Message, "1 employees") || !strings.Contains(env.Error.Message, "LOCATEX") {
		t.Fatalf("prompt should describe the batch, got %q", env.Error.Message)
	}

	sheet["confirm"] = true
	resp, env = call(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", sheet)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", resp.StatusCode, env.Error)
	}

	resp, env = call(t, ts, http.MethodPost, "/api/v1/payroll/batch/prefill", "", map[string]any{"closingDate": "29/02/2024", "company": "LOCATEX"})
	var prefill struct {
		Filled int `json:"filled"`
	}
	_ = json.Unmarshal(env.Data, &prefill)
	if resp.StatusCode != http.StatusOK || prefill.Filled != 1 {
		t.Fatalf("expected one prefilled employee, got %d %+v", resp.StatusCode, prefill)
	}

	resp, _ = call(t, ts, http.MethodPost, "/api/v1/payroll/batch/export", "", map[string]any{"closingDate": "31/01/2024", "company": "LOCATEX"})
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Disposition"), "folha_LOCATEX_31-01-2024.csv") {
		t.Fatalf("unexpected export %d %s", resp.StatusCode, resp.Header.Get("Content-Disposition"))
	}

	resp, env = call(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", map[string]any{"closingDate": "31-01-2024"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad closing date to fail, got %d %+v", resp.StatusCode, env.Error)
	}
}

func TestRetriedFinalizeSavesOnce(t *testing.T) {
	ts := newServer(t, testConfig())
	call(t, ts, http.MethodPost, "/api/v1/employees", "", validEmployee("Ana Paula", "529.982.247-25"))

	sheet := map[string]any{"closingDate": "31/01/2024", "company": "LOCATEX", "confirm": true}
	key := map[string]string{"Idempotency-Key": "finalize-2024-01"}
	first, env := callWithHeaders(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", key, sheet)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", first.StatusCode, env.Error)
	}
	retry, _ := callWithHeaders(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", key, sheet)
	if retry.StatusCode != http.StatusCreated || retry.Header.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d", retry.StatusCode)
	}

	_, env = call(t, ts, http.MethodGet, "/api/v1/payroll/records", "", nil)
	var history struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(env.Data, &history)
	if history.Total != 1 {
		t.Fatalf("expected the month saved once, got %d records", history.Total)
	}

	sheet["closingDate"] = "29/02/2024"
	reused, env := callWithHeaders(t, ts, http.MethodPost, "/api/v1/payroll/batch/finalize", "", key, sheet)
	if reused.StatusCode != http.StatusConflict || env.Error.Code != "idempotency_conflict" {
		t.Fatalf("expected idempotency_conflict, got %d %+v", reused.StatusCode, env.Error)
	}
}

func TestAdvancesAndStatus(t *testing.T) {
	ts := newServer(t, testConfig())
	resp, env := call(t, ts, http.MethodPost, "/api/v1/payroll/advances", "", map[string]any{"periodStart": "01/03/2024"})
	var sheet struct {
		GrandTotal float64 `json:"grandTotal"`
	}
	_ = json.Unmarshal(env.Data, &sheet)
	if resp.StatusCode != http.StatusOK || sheet.GrandTotal != 2000 {
		t.Fatalf("expected seed advance 2000, got %d %+v", resp.StatusCode, sheet)
	}

	resp, env = call(t, ts, http.MethodGet, "/api/v1/status", "", nil)
	var status struct {
		Store struct {
			Mode string `json:"mode"`
		} `json:"store"`
	}
	_ = json.Unmarshal(env.Data, &status)
	if resp.StatusCode != http.StatusOK || status.Store.Mode != "OFFLINE" {
		t.Fatalf("expected offline status, got %d %+v", resp.StatusCode, status)
	}

	resp, env = call(t, ts, http.MethodPost, "/api/v1/sync/reload", "", nil)
	var reload struct {
		Mode   string `json:"mode"`
		Reason string `json:"reason"`
	}
	_ = json.Unmarshal(env.Data, &reload)
	if resp.StatusCode != http.StatusOK || reload.Mode != "OFFLINE" || reload.Reason == "" {
		t.Fatalf("expected offline reload with reason, got %d %+v", resp.StatusCode, reload)
	}
}

func TestOperatorLogin(t *testing.T) {
	hash, err := auth.HashPassword("s3nha-forte")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	cfg := testConfig()
	cfg.OperatorEmail = "rh@example.com"
	cfg.OperatorPasswordHash = hash
	cfg.JWTSecret = "test-secret"
	ts := newServer(t, cfg)

	resp, _ := call(t, ts, http.MethodGet, "/api/v1/employees", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp, _ = call(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "rh@example.com", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}

	resp, env := call(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "rh@example.com", "password": "s3nha-forte"})
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	_ = json.Unmarshal(env.Data, &login)
	if resp.StatusCode != http.StatusOK || login.AccessToken == "" {
		t.Fatalf("expected token, got %d %+v", resp.StatusCode, env.Error)
	}

	resp, _ = call(t, ts, http.MethodGet, "/api/v1/employees", login.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

// flakyRemote is an empty remote that can be switched off.
type flakyRemote struct {
	down atomic.Bool
}

var errUnreachable = errors.New("dial tcp: connection refused")

func (f *flakyRemote) check() error {
	if f.down.Load() {
		return errUnreachable
	}
	return nil
}

func (f *flakyRemote) Ping(context.Context) error { return f.check() }

func (f *flakyRemote) ListEmployees(context.Context) ([]core.EmployeeRow, error) {
	return nil, f.check()
}

func (f *flakyRemote) ListPayrollRecords(context.Context) ([]payroll.RecordRow, error) {
	return nil, f.check()
}

func (f *flakyRemote) InsertEmployee(context.Context, core.EmployeeRow) error { return f.check() }

func (f *flakyRemote) UpsertEmployee(context.Context, core.EmployeeRow) error { return f.check() }

func (f *flakyRemote) InsertPayrollRecords(context.Context, []payroll.RecordRow) error {
	return f.check()
}

func TestBackgroundResyncRecoversOnlineMode(t *testing.T) {
	remote := &flakyRemote{}
	remote.down.Store(true)
	cfg := testConfig()
	cfg.SyncInterval = 10 * time.Millisecond
	app, err := server.New(context.Background(), cfg, server.Options{Remote: remote, Local: store.NewMemoryMirror()})
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	if app.Store.Mode() != store.ModeOffline {
		t.Fatalf("expected offline start, got %s", app.Store.Mode())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.StartBackground(ctx)
	remote.down.Store(false)

	deadline := time.Now().Add(2 * time.Second)
	for app.Store.Mode() != store.ModeOnline {
		if time.Now().After(deadline) {
			t.Fatalf("store did not come back online")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
