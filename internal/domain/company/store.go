package company

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sawa/internal/domain/payroll"
	cryptoutil "sawa/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

// CreateWithOwner registers a company and its owner credential in one
// transaction. The owner's identity is the digest of their phone number;
// the raw number is stored only as ciphertext.
func (s *Store) CreateWithOwner(ctx context.Context, name, email, ownerIdentity, ownerPhone, pinHash string) (*Company, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM companies WHERE lower(name) = lower($1)
  `, name).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCompanyExists
	}

	comp := &Company{ID: uuid.NewString(), Name: name, Email: email}
	err = tx.QueryRow(ctx, `
    INSERT INTO companies (id, name, email)
    VALUES ($1, $2, $3)
    RETURNING created_at
  `, comp.ID, comp.Name, comp.Email).Scan(&comp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	phoneEnc, err := s.Crypto.EncryptString(ownerPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt phone: %w", err)
	}
	_, err = tx.Exec(ctx, `
    INSERT INTO users (identity, tenant_id, role, pin_hash, phone_enc)
    VALUES ($1, $2, 'owner', $3, $4)
    ON CONFLICT (identity) DO UPDATE SET
      tenant_id = EXCLUDED.tenant_id,
      role = EXCLUDED.role,
      pin_hash = EXCLUDED.pin_hash,
      phone_enc = EXCLUDED.phone_enc,
      failed_pins = 0
  `, ownerIdentity, comp.ID, pinHash, phoneEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner credential: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return comp, nil
}

func (s *Store) CompanyByID(ctx context.Context, tenantID string) (*Company, error) {
	var comp Company
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, created_at FROM companies WHERE id = $1
  `, tenantID).Scan(&comp.ID, &comp.Name, &comp.Email, &comp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &comp, nil
}

// CreateEmployee adds an employee to the roster, assigning the next
// sequential code within the tenant. When a phone number is supplied a
// matching employee credential row is created so the person can talk to
// the assistant themselves; the credential has no PIN until they set one.
func (s *Store) CreateEmployee(ctx context.Context, tenantID, name, position, phone string, salary payroll.SalaryStructure) (*Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND lower(name) = lower($2)
  `, tenantID, name).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmployeeExists
	}

	var total int
	if err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE tenant_id = $1
  `, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	emp := &Employee{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Code:         fmt.Sprintf("EMP%04d", total+1),
		Name:         name,
		Position:     position,
		Phone:        phone,
		Salary:       salary,
		LeaveBalance: DefaultLeaveDays,
	}

	var phoneEnc []byte
	var phoneDigest string
	if phone != "" {
		phoneEnc, err = s.Crypto.EncryptString(phone)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt phone: %w", err)
		}
		phoneDigest = cryptoutil.Digest(phone)
		emp.PhoneDigest = phoneDigest
	}

	salaryJSON, err := json.Marshal(emp.Salary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode salary: %w", err)
	}

	err = tx.QueryRow(ctx, `
    INSERT INTO employees (id, tenant_id, code, name, position, phone_enc, phone_digest, salary, leave_balance)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
    RETURNING created_at
  `, emp.ID, emp.TenantID, emp.Code, emp.Name, emp.Position, phoneEnc, phoneDigest, salaryJSON, emp.LeaveBalance).Scan(&emp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	if phoneDigest != "" {
		_, err = tx.Exec(ctx, `
      INSERT INTO users (identity, tenant_id, role, phone_enc)
      VALUES ($1, $2, 'employee', $3)
      ON CONFLICT (identity) DO NOTHING
    `, phoneDigest, tenantID, phoneEnc)
		if err != nil {
			return nil, fmt.Errorf("failed to create employee credential: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return emp, nil
}

func (s *Store) EmployeeByID(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, code, name, position, phone_enc, COALESCE(phone_digest, ''), salary, leave_balance, created_at
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID)
	return s.scanEmployee(row)
}

// EmployeeByPhoneDigest resolves the employee behind a sender identity.
func (s *Store) EmployeeByPhoneDigest(ctx context.Context, tenantID, digest string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, code, name, position, phone_enc, COALESCE(phone_digest, ''), salary, leave_balance, created_at
    FROM employees
    WHERE tenant_id = $1 AND phone_digest = $2
  `, tenantID, digest)
	return s.scanEmployee(row)
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, code, name, position, phone_enc, COALESCE(phone_digest, ''), salary, leave_balance, created_at
    FROM employees
    WHERE tenant_id = $1
    ORDER BY code
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) scanEmployee(row pgx.Row) (*Employee, error) {
	var (
		emp        Employee
		phoneEnc   []byte
		salaryJSON []byte
	)
	err := row.Scan(&emp.ID, &emp.TenantID, &emp.Code, &emp.Name, &emp.Position,
		&phoneEnc, &emp.PhoneDigest, &salaryJSON, &emp.LeaveBalance, &emp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	if len(salaryJSON) > 0 {
		if err := json.Unmarshal(salaryJSON, &emp.Salary); err != nil {
			return nil, fmt.Errorf("failed to decode salary: %w", err)
		}
	}
	if len(phoneEnc) > 0 {
		plain, err := s.Crypto.DecryptString(phoneEnc)
		if err == nil {
			emp.Phone = strings.TrimSpace(plain)
		}
	}
	return &emp, nil
}
