package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
	"rhmaster/internal/platform/querier"
)

// Remote is the shared relational store behind the session.
type Remote interface {
	Ping(ctx context.Context) error
	ListEmployees(ctx context.Context) ([]core.EmployeeRow, error)
	ListPayrollRecords(ctx context.Context) ([]payroll.RecordRow, error)
	InsertEmployee(ctx context.Context, row core.EmployeeRow) error
	UpsertEmployee(ctx context.Context, row core.EmployeeRow) error
	// InsertPayrollRecords writes all rows in one call; rows whose id is
	// already stored are skipped.
	InsertPayrollRecords(ctx context.Context, rows []payroll.RecordRow) error
}

// PgRemote implements Remote on PostgreSQL.
type PgRemote struct {
	DB querier.Querier
}

func NewPgRemote(db querier.Querier) *PgRemote {
	return &PgRemote{DB: db}
}

func (r *PgRemote) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}

func (r *PgRemote) ListEmployees(ctx context.Context) ([]core.EmployeeRow, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT id, name, company,
           COALESCE(admission_date::text, ''), COALESCE(dismissal_date::text, ''), COALESCE(birth_date::text, ''),
           address, city, state, cep, phone, father_name, mother_name,
           cpf, rg, ctps, pis, voter_id, role, salary::text, role_accumulation::text
    FROM employees
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.EmployeeRow
	for rows.Next() {
		var e core.EmployeeRow
		var salary, accumulation string
		if err := rows.Scan(&e.ID, &e.Name, &e.Company,
			&e.AdmissionDate, &e.DismissalDate, &e.BirthDate,
			&e.Address, &e.City, &e.State, &e.CEP, &e.Phone, &e.FatherName, &e.MotherName,
			&e.CPF, &e.RG, &e.CTPS, &e.PIS, &e.VoterID, &e.Role, &salary, &accumulation); err != nil {
			return nil, err
		}
		e.Salary = core.Numeric(salary)
		e.RoleAccumulation = core.Numeric(accumulation)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PgRemote) ListPayrollRecords(ctx context.Context) ([]payroll.RecordRow, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT id, employee_id, COALESCE(closing_date::text, ''),
           other_income::text, bonuses::text, vt, basic_basket::text,
           ot100::text, ot70::text, ot50::text, vr::text,
           advances::text, absences::text, loans::text, other_discounts::text,
           pharmacy::text, supermarket::text, dental::text, medical::text, other_convenios::text,
           observations, created_at
    FROM payroll_records
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.RecordRow
	for rows.Next() {
		var p payroll.RecordRow
		var n [16]string
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.ClosingDate,
			&n[0], &n[1], &p.VT, &n[2],
			&n[3], &n[4], &n[5], &n[6],
			&n[7], &n[8], &n[9], &n[10],
			&n[11], &n[12], &n[13], &n[14], &n[15],
			&p.Observations, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.OtherIncome, p.Bonuses, p.BasicBasket = core.Numeric(n[0]), core.Numeric(n[1]), core.Numeric(n[2])
		p.OT100, p.OT70, p.OT50, p.VR = core.Numeric(n[3]), core.Numeric(n[4]), core.Numeric(n[5]), core.Numeric(n[6])
		p.Advances, p.Absences, p.Loans, p.OtherDiscounts = core.Numeric(n[7]), core.Numeric(n[8]), core.Numeric(n[9]), core.Numeric(n[10])
		p.Pharmacy, p.Supermarket, p.Dental, p.Medical = core.Numeric(n[11]), core.Numeric(n[12]), core.Numeric(n[13]), core.Numeric(n[14])
		p.OtherConvenios = core.Numeric(n[15])
		out = append(out, p)
	}
	return out, rows.Err()
}

const employeeColumns = `id, name, company, admission_date, dismissal_date, birth_date,
      address, city, state, cep, phone, father_name, mother_name,
      cpf, rg, ctps, pis, voter_id, role, salary, role_accumulation`

const employeeValues = `$1, $2, $3, $4::date, $5::date, $6::date,
      $7, $8, $9, $10, $11, $12, $13,
      $14, $15, $16, $17, $18, $19, $20::numeric, $21::numeric`

func employeeArgs(e core.EmployeeRow) []any {
	return []any{
		e.ID, e.Name, e.Company, nullIfEmpty(e.AdmissionDate), nullIfEmpty(e.DismissalDate), nullIfEmpty(e.BirthDate),
		e.Address, e.City, e.State, e.CEP, e.Phone, e.FatherName, e.MotherName,
		e.CPF, e.RG, e.CTPS, e.PIS, e.VoterID, e.Role, numericArg(e.Salary), numericArg(e.RoleAccumulation),
	}
}

func (r *PgRemote) InsertEmployee(ctx context.Context, row core.EmployeeRow) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO employees (`+employeeColumns+`) VALUES (`+employeeValues+`)`, employeeArgs(row)...)
	return classify(err)
}

func (r *PgRemote) UpsertEmployee(ctx context.Context, row core.EmployeeRow) error {
	_, err := r.DB.Exec(ctx, `
    INSERT INTO employees (`+employeeColumns+`) VALUES (`+employeeValues+`)
    ON CONFLICT (id) DO UPDATE SET
      name = EXCLUDED.name, company = EXCLUDED.company,
      admission_date = EXCLUDED.admission_date, dismissal_date = EXCLUDED.dismissal_date, birth_date = EXCLUDED.birth_date,
      address = EXCLUDED.address, city = EXCLUDED.city, state = EXCLUDED.state, cep = EXCLUDED.cep, phone = EXCLUDED.phone,
      father_name = EXCLUDED.father_name, mother_name = EXCLUDED.mother_name,
      cpf = EXCLUDED.cpf, rg = EXCLUDED.rg, ctps = EXCLUDED.ctps, pis = EXCLUDED.pis, voter_id = EXCLUDED.voter_id,
      role = EXCLUDED.role, salary = EXCLUDED.salary, role_accumulation = EXCLUDED.role_accumulation,
      updated_at = now()
  `, employeeArgs(row)...)
	return classify(err)
}

func (r *PgRemote) InsertPayrollRecords(ctx context.Context, rows []payroll.RecordRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(`
      INSERT INTO payroll_records (id, employee_id, closing_date,
        other_income, bonuses, vt, basic_basket, ot100, ot70, ot50, vr,
        advances, absences, loans, other_discounts, pharmacy, supermarket, dental, medical, other_convenios,
        observations, created_at)
      VALUES ($1, $2, $3::date,
        $4::numeric, $5::numeric, $6, $7::numeric, $8::numeric, $9::numeric, $10::numeric, $11::numeric,
        $12::numeric, $13::numeric, $14::numeric, $15::numeric, $16::numeric, $17::numeric, $18::numeric, $19::numeric, $20::numeric,
        $21, $22)
      ON CONFLICT (id) DO NOTHING
    `, p.ID, p.EmployeeID, nullIfEmpty(p.ClosingDate),
			numericArg(p.OtherIncome), numericArg(p.Bonuses), p.VT, numericArg(p.BasicBasket),
			numericArg(p.OT100), numericArg(p.OT70), numericArg(p.OT50), numericArg(p.VR),
			numericArg(p.Advances), numericArg(p.Absences), numericArg(p.Loans), numericArg(p.OtherDiscounts),
			numericArg(p.Pharmacy), numericArg(p.Supermarket), numericArg(p.Dental), numericArg(p.Medical), numericArg(p.OtherConvenios),
			p.Observations, p.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return classify(err)
	}
	return classify(tx.Commit(ctx))
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func numericArg(n core.Numeric) string {
	if n == "" {
		return "0"
	}
	return string(n)
}

// classify maps unique and foreign key violations to ErrConflict. Anything
// else is treated as a connectivity failure by the store.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}
