package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
	"rhmaster/internal/platform/metrics"
)

type Options struct {
	// Remote may be nil, in which case the store runs offline.
	Remote      Remote
	Local       Mirror
	Session     *Session
	Logger      *zap.Logger
	Metrics     *metrics.Collector
	PingTimeout time.Duration
	Now         func() time.Time
	NewID       func() string
}

// Store is the single source of employee and payroll data for a session.
// The remote is authoritative while reachable; the local mirror always holds
// the last known state. Operations are serialized.
type Store struct {
	mu      sync.Mutex
	remote  Remote
	local   Mirror
	session *Session
	log     *zap.Logger
	metrics *metrics.Collector
	ping    time.Duration
	now     func() time.Time
	newID   func() string
}

// Open pings the remote and loads the initial state. It never fails:
// without a reachable remote the session starts offline on the local mirror,
// or on the seed dataset when the mirror is empty.
func Open(ctx context.Context, opts Options) *Store {
	s := &Store{
		remote:  opts.Remote,
		local:   opts.Local,
		session: opts.Session,
		log:     opts.Logger,
		metrics: opts.Metrics,
		ping:    opts.PingTimeout,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.local == nil {
		s.local = NewMemoryMirror()
	}
	if s.session == nil {
		s.session = NewSession()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.ping <= 0 {
		s.ping = 5 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocal()
	if err := s.sync(ctx); err != nil {
		s.goOffline("startup", err)
	}
	return s
}

// Reload retries the remote. Pending local writes are pushed before the
// remote state is read back.
func (s *Store) Reload(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sync(ctx); err != nil {
		s.goOffline("reload", err)
		return s.session.Mode, err
	}
	return s.session.Mode, nil
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Mode
}

type Status struct {
	Mode             Mode   `json:"mode"`
	Employees        int    `json:"employees"`
	Records          int    `json:"records"`
	EmployeesVersion uint64 `json:"employeesVersion"`
	RecordsVersion   uint64 `json:"recordsVersion"`
	Pending          int    `json:"pending"`
	Rejected         int    `json:"rejected"`
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Mode:             s.session.Mode,
		Employees:        s.session.Employees.Len(),
		Records:          s.session.Records.Len(),
		EmployeesVersion: s.session.Employees.Version(),
		RecordsVersion:   s.session.Records.Version(),
		Pending:          len(s.session.PendingEmployees) + len(s.session.PendingRecords),
		Rejected:         len(s.session.RejectedEmployees) + len(s.session.RejectedRecords),
	}
}

// Employees returns every employee. Online it re-reads the remote and
// replaces the local mirror; a failed read switches the session offline.
func (s *Store) Employees(ctx context.Context) []core.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Mode == ModeOnline {
		rows, err := s.remote.ListEmployees(ctx)
		if err != nil {
			s.goOffline("list employees", err)
		} else {
			s.applyEmployees(rows)
			s.persist()
		}
	}
	return s.session.Employees.Items()
}

// Records returns every payroll record, newest first.
func (s *Store) Records(ctx context.Context) []payroll.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Mode == ModeOnline {
		rows, err := s.remote.ListPayrollRecords(ctx)
		if err != nil {
			s.goOffline("list payroll records", err)
		} else {
			s.applyRecords(rows)
			s.persist()
		}
	}
	return s.session.Records.Items()
}

// CreateEmployee assigns an id and stores emp locally, then remotely when
// online. A duplicate CPF already known to the session is refused before
// anything is written. ErrConflict from the remote leaves the local copy in
// place, marked rejected so it is not resubmitted automatically.
func (s *Store) CreateEmployee(ctx context.Context, emp core.Employee) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cpfTaken(emp.CPF, "") {
		return core.Employee{}, fmt.Errorf("%w: cpf %s", ErrConflict, emp.CPF)
	}
	emp.ID = s.newID()
	s.session.Employees.Append(emp)
	s.session.PendingEmployees[emp.ID] = struct{}{}
	s.persist()

	if s.session.Mode != ModeOnline {
		return emp, nil
	}
	if err := s.remote.InsertEmployee(ctx, core.EmployeeToRow(emp)); err != nil {
		return emp, s.remoteWriteFailed("insert employee", err, func() { s.rejectEmployee(emp.ID) })
	}
	delete(s.session.PendingEmployees, emp.ID)
	s.persist()
	return emp, nil
}

// UpdateEmployee replaces a stored employee. Editing a rejected employee
// submits it to the remote again.
func (s *Store) UpdateEmployee(ctx context.Context, emp core.Employee) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := func(e core.Employee) bool { return e.ID == emp.ID }
	if _, ok := s.session.Employees.Find(byID); !ok {
		return core.Employee{}, ErrNotFound
	}
	if s.cpfTaken(emp.CPF, emp.ID) {
		return core.Employee{}, fmt.Errorf("%w: cpf %s", ErrConflict, emp.CPF)
	}
	s.session.Employees.Set(byID, emp)
	delete(s.session.RejectedEmployees, emp.ID)
	s.session.PendingEmployees[emp.ID] = struct{}{}
	s.persist()

	if s.session.Mode != ModeOnline {
		return emp, nil
	}
	if err := s.remote.UpsertEmployee(ctx, core.EmployeeToRow(emp)); err != nil {
		return emp, s.remoteWriteFailed("update employee", err, func() { s.rejectEmployee(emp.ID) })
	}
	delete(s.session.PendingEmployees, emp.ID)
	s.persist()
	return emp, nil
}

func (s *Store) CreateRecord(ctx context.Context, rec payroll.Record) (payroll.Record, error) {
	saved, err := s.CreateRecords(ctx, []payroll.Record{rec})
	if len(saved) == 0 {
		return payroll.Record{}, err
	}
	return saved[0], err
}

// CreateRecords stores a batch with one remote call. Ids and the creation
// time are assigned here; saved records lead the collection in input order.
func (s *Store) CreateRecords(ctx context.Context, records []payroll.Record) ([]payroll.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	saved := make([]payroll.Record, len(records))
	for i, rec := range records {
		rec.ID = s.newID()
		rec.CreatedAt = now
		saved[i] = rec
		s.session.PendingRecords[rec.ID] = struct{}{}
	}
	s.session.Records.Prepend(saved...)
	s.persist()

	if s.session.Mode != ModeOnline {
		return saved, nil
	}
	rows := make([]payroll.RecordRow, len(saved))
	for i, rec := range saved {
		rows[i] = payroll.RecordToRow(rec)
	}
	if err := s.remote.InsertPayrollRecords(ctx, rows); err != nil {
		return saved, s.remoteWriteFailed("insert payroll records", err, func() { s.rejectRecords(rows) })
	}
	for _, rec := range saved {
		delete(s.session.PendingRecords, rec.ID)
	}
	s.persist()
	return saved, nil
}

// cpfTaken ignores rejected employees: the remote already refused them, so
// they must not block the rows it holds.
func (s *Store) cpfTaken(cpf, exceptID string) bool {
	clean := core.CleanCPF(cpf)
	if clean == "" {
		return false
	}
	_, taken := s.session.Employees.Find(func(e core.Employee) bool {
		if e.ID == exceptID || localOnly(e.ID, s.session.RejectedEmployees) {
			return false
		}
		return core.CleanCPF(e.CPF) == clean
	})
	return taken
}

func (s *Store) rejectEmployee(id string) {
	delete(s.session.PendingEmployees, id)
	s.session.RejectedEmployees[id] = struct{}{}
}

func (s *Store) rejectRecords(rows []payroll.RecordRow) {
	for _, row := range rows {
		delete(s.session.PendingRecords, row.ID)
		s.session.RejectedRecords[row.ID] = struct{}{}
	}
}

// remoteWriteFailed keeps the local write. Conflicts run reject and are
// reported to the caller; anything else switches the session offline and
// is absorbed.
func (s *Store) remoteWriteFailed(op string, err error, reject func()) error {
	if errors.Is(err, ErrConflict) {
		s.log.Warn("remote rejected write", zap.String("op", op), zap.Error(err))
		reject()
		s.persist()
		return err
	}
	s.goOffline(op, err)
	return nil
}

func (s *Store) sync(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.ping)
	defer cancel()
	if err := s.remote.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping remote: %w", err)
	}
	if err := s.pushPending(ctx); err != nil {
		return err
	}
	employees, err := s.remote.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	records, err := s.remote.ListPayrollRecords(ctx)
	if err != nil {
		return fmt.Errorf("list payroll records: %w", err)
	}
	s.applyEmployees(employees)
	s.applyRecords(records)
	if s.session.Mode != ModeOnline {
		s.log.Info("store online")
	}
	s.session.Mode = ModeOnline
	s.persist()
	return nil
}

// pushPending replays writes made while offline. Rows the remote refuses as
// conflicting move from pending to rejected and stay local.
func (s *Store) pushPending(ctx context.Context) error {
	for _, emp := range s.session.Employees.Items() {
		if !localOnly(emp.ID, s.session.PendingEmployees, s.session.RejectedEmployees) {
			continue
		}
		err := s.remote.UpsertEmployee(ctx, core.EmployeeToRow(emp))
		switch {
		case err == nil:
			delete(s.session.PendingEmployees, emp.ID)
		case errors.Is(err, ErrConflict):
			s.log.Warn("pending employee rejected", zap.String("employee_id", emp.ID), zap.Error(err))
			s.rejectEmployee(emp.ID)
		default:
			return fmt.Errorf("push employee %s: %w", emp.ID, err)
		}
	}

	var rows []payroll.RecordRow
	for _, rec := range s.session.Records.Items() {
		if _, ok := s.session.PendingRecords[rec.ID]; ok {
			rows = append(rows, payroll.RecordToRow(rec))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	err := s.remote.InsertPayrollRecords(ctx, rows)
	switch {
	case err == nil:
		for _, row := range rows {
			delete(s.session.PendingRecords, row.ID)
		}
	case errors.Is(err, ErrConflict):
		s.log.Warn("pending payroll records rejected", zap.Int("count", len(rows)), zap.Error(err))
		s.rejectRecords(rows)
	default:
		return fmt.Errorf("push payroll records: %w", err)
	}
	return nil
}

// applyEmployees replaces the collection with the remote rows, keeping any
// local employee that is pending or rejected.
func (s *Store) applyEmployees(rows []core.EmployeeRow) {
	items := make([]core.Employee, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[row.ID] = len(items)
		items = append(items, core.EmployeeFromRow(row))
	}
	for _, emp := range s.session.Employees.Items() {
		if !localOnly(emp.ID, s.session.PendingEmployees, s.session.RejectedEmployees) {
			continue
		}
		if i, ok := seen[emp.ID]; ok {
			items[i] = emp
			continue
		}
		items = append(items, emp)
	}
	s.session.Employees.Replace(items)
}

func (s *Store) applyRecords(rows []payroll.RecordRow) {
	var pending []payroll.Record
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[row.ID] = true
	}
	for _, rec := range s.session.Records.Items() {
		if localOnly(rec.ID, s.session.PendingRecords, s.session.RejectedRecords) && !seen[rec.ID] {
			pending = append(pending, rec)
		}
	}
	items := make([]payroll.Record, 0, len(pending)+len(rows))
	items = append(items, pending...)
	for _, row := range rows {
		items = append(items, payroll.RecordFromRow(row))
	}
	s.session.Records.Replace(items)
}

func (s *Store) goOffline(op string, err error) {
	if s.session.Mode == ModeOnline {
		s.log.Warn("remote unavailable, switching to local store", zap.String("op", op), zap.Error(err))
	} else if !errors.Is(err, ErrNoRemote) {
		s.log.Info("remote unavailable", zap.String("op", op), zap.Error(err))
	}
	if !errors.Is(err, ErrNoRemote) {
		s.metrics.RecordRemoteFailure()
	}
	s.metrics.RecordFallback()
	s.session.Mode = ModeOffline
	if !s.session.Employees.Populated() {
		s.session.Employees.Replace(seedEmployees())
	}
}

func (s *Store) loadLocal() {
	snap, ok, err := s.local.Load()
	if err != nil {
		s.log.Warn("local snapshot unreadable", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	s.session.Employees.Replace(snap.Employees)
	s.session.Records.Replace(snap.Records)
	for _, id := range snap.PendingEmployees {
		s.session.PendingEmployees[id] = struct{}{}
	}
	for _, id := range snap.PendingRecords {
		s.session.PendingRecords[id] = struct{}{}
	}
	for _, id := range snap.RejectedEmployees {
		s.session.RejectedEmployees[id] = struct{}{}
	}
	for _, id := range snap.RejectedRecords {
		s.session.RejectedRecords[id] = struct{}{}
	}
}

// persist mirrors the session locally. A failure is logged; the in-memory
// state stays authoritative for the session.
func (s *Store) persist() {
	snap := Snapshot{
		Employees:        s.session.Employees.Items(),
		Records:          s.session.Records.Items(),
		PendingEmployees: sortedKeys(s.session.PendingEmployees),
		PendingRecords:   sortedKeys(s.session.PendingRecords),

		RejectedEmployees: sortedKeys(s.session.RejectedEmployees),
		RejectedRecords:   sortedKeys(s.session.RejectedRecords),
	}
	if err := s.local.Save(snap); err != nil {
		s.log.Error("persist local snapshot", zap.Error(err))
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
