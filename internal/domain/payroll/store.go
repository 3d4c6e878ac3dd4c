package payroll

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPayslipNotFound = errors.New("payslip not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CreateRun persists a payroll run and its payslip snapshots in one
// transaction. Snapshots are immutable; re-running a period inserts new rows.
func (s *Store) CreateRun(ctx context.Context, run Run, records []Record) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
    INSERT INTO payroll_runs (id, tenant_id, period, run_by, total_net)
    VALUES ($1,$2,$3,$4,$5)
  `, run.ID, run.TenantID, run.Period, run.RunBy, int64(run.TotalNet))
	if err != nil {
		return err
	}

	for _, rec := range records {
		slipJSON, err := json.Marshal(rec.Slip)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
      INSERT INTO payslips (id, tenant_id, run_id, employee_id, employee_code, employee_name, period, slip)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, rec.ID, rec.TenantID, rec.RunID, rec.EmployeeID, rec.EmployeeCode, rec.EmployeeName, rec.Period, slipJSON)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) PayslipByID(ctx context.Context, tenantID, payslipID string) (Record, error) {
	var rec Record
	var slipJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, run_id, employee_id, employee_code, employee_name, period, slip, created_at
    FROM payslips
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, payslipID).Scan(&rec.ID, &rec.TenantID, &rec.RunID, &rec.EmployeeID, &rec.EmployeeCode, &rec.EmployeeName, &rec.Period, &slipJSON, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrPayslipNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(slipJSON, &rec.Slip); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// LatestForEmployee returns the most recent payslip snapshot for an employee,
// used by the self-service PAYSLIP command.
func (s *Store) LatestForEmployee(ctx context.Context, tenantID, employeeID string) (Record, error) {
	var rec Record
	var slipJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, run_id, employee_id, employee_code, employee_name, period, slip, created_at
    FROM payslips
    WHERE tenant_id = $1 AND employee_id = $2
    ORDER BY created_at DESC
    LIMIT 1
  `, tenantID, employeeID).Scan(&rec.ID, &rec.TenantID, &rec.RunID, &rec.EmployeeID, &rec.EmployeeCode, &rec.EmployeeName, &rec.Period, &slipJSON, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrPayslipNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(slipJSON, &rec.Slip); err != nil {
		return Record{}, err
	}
	return rec, nil
}
