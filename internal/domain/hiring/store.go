package hiring

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "sawa/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

// newJobCode produces a short shareable code like SAW-A3F2.
func newJobCode() string {
	buf := make([]byte, 2)
	rand.Read(buf)
	return "SAW-" + strings.ToUpper(hex.EncodeToString(buf))
}

func (s *Store) CreateJob(ctx context.Context, job *Job) (*Job, error) {
	out := *job
	out.ID = uuid.NewString()
	out.Status = JobOpen

	// Two random bytes can collide within a busy tenant pool; retry with a
	// fresh code instead of surfacing the unique violation.
	for attempt := 0; attempt < 5; attempt++ {
		out.Code = newJobCode()
		var exists int
		if err := s.DB.QueryRow(ctx, `
      SELECT COUNT(1) FROM jobs WHERE code = $1
    `, out.Code).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			break
		}
	}

	err := s.DB.QueryRow(ctx, `
    INSERT INTO jobs (id, tenant_id, code, title, description, requirements, location, salary_range, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING created_at
  `, out.ID, out.TenantID, out.Code, out.Title, out.Description, out.Requirements,
		out.Location, out.SalaryRange, out.Status).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &out, nil
}

// JobByCode looks a job up across tenants: applicants outside the company
// reach it by code alone.
func (s *Store) JobByCode(ctx context.Context, code string) (*Job, error) {
	var job Job
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, code, title, COALESCE(description, ''), COALESCE(requirements, ''),
           COALESCE(location, ''), COALESCE(salary_range, ''), status, created_at
    FROM jobs
    WHERE code = $1
  `, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&job.ID, &job.TenantID, &job.Code, &job.Title, &job.Description,
		&job.Requirements, &job.Location, &job.SalaryRange, &job.Status, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *Store) ListOpenJobs(ctx context.Context, tenantID string) ([]Job, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, code, title, COALESCE(description, ''), COALESCE(requirements, ''),
           COALESCE(location, ''), COALESCE(salary_range, ''), status, created_at
    FROM jobs
    WHERE tenant_id = $1 AND status = 'open'
    ORDER BY created_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var job Job
		err := rows.Scan(&job.ID, &job.TenantID, &job.Code, &job.Title, &job.Description,
			&job.Requirements, &job.Location, &job.SalaryRange, &job.Status, &job.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *Store) CloseJob(ctx context.Context, tenantID, jobID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE jobs SET status = 'closed' WHERE tenant_id = $1 AND id = $2
  `, tenantID, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// AddCandidate records an application against an open job.
func (s *Store) AddCandidate(ctx context.Context, job *Job, name, phone, experience string) (*Candidate, error) {
	if job.Status != JobOpen {
		return nil, ErrJobClosed
	}

	cand := &Candidate{
		ID:         uuid.NewString(),
		TenantID:   job.TenantID,
		JobID:      job.ID,
		Name:       name,
		Phone:      phone,
		Experience: experience,
		Stage:      StageApplied,
	}

	var phoneEnc []byte
	if phone != "" {
		var err error
		phoneEnc, err = s.Crypto.EncryptString(phone)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt phone: %w", err)
		}
		cand.PhoneDigest = cryptoutil.Digest(phone)
	}

	err := s.DB.QueryRow(ctx, `
    INSERT INTO candidates (id, tenant_id, job_id, name, phone_enc, phone_digest, experience, stage)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
    RETURNING created_at
  `, cand.ID, cand.TenantID, cand.JobID, cand.Name, phoneEnc, cand.PhoneDigest,
		cand.Experience, cand.Stage).Scan(&cand.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return cand, nil
}

func (s *Store) CandidatesForJob(ctx context.Context, tenantID, jobID string) ([]Candidate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, job_id, name, phone_enc, COALESCE(phone_digest, ''), COALESCE(experience, ''), stage, created_at
    FROM candidates
    WHERE tenant_id = $1 AND job_id = $2
    ORDER BY created_at
  `, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		cand, err := s.scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cand)
	}
	return out, rows.Err()
}

func (s *Store) CandidateByID(ctx context.Context, tenantID, candidateID string) (*Candidate, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, job_id, name, phone_enc, COALESCE(phone_digest, ''), COALESCE(experience, ''), stage, created_at
    FROM candidates
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, candidateID)
	return s.scanCandidate(row)
}

// AdvanceCandidate moves a candidate one step up the pipeline ladder.
func (s *Store) AdvanceCandidate(ctx context.Context, tenantID, candidateID string) (*Candidate, error) {
	cand, err := s.CandidateByID(ctx, tenantID, candidateID)
	if err != nil {
		return nil, err
	}
	next, ok := NextStage(cand.Stage)
	if !ok {
		return nil, ErrFinalStage
	}
	return s.setStage(ctx, cand, next)
}

func (s *Store) RejectCandidate(ctx context.Context, tenantID, candidateID string) (*Candidate, error) {
	cand, err := s.CandidateByID(ctx, tenantID, candidateID)
	if err != nil {
		return nil, err
	}
	return s.setStage(ctx, cand, StageRejected)
}

// MarkStage sets an explicit stage, used for offers and hires where the
// flow jumps rather than walks the ladder.
func (s *Store) MarkStage(ctx context.Context, tenantID, candidateID, stage string) (*Candidate, error) {
	cand, err := s.CandidateByID(ctx, tenantID, candidateID)
	if err != nil {
		return nil, err
	}
	return s.setStage(ctx, cand, stage)
}

func (s *Store) setStage(ctx context.Context, cand *Candidate, stage string) (*Candidate, error) {
	_, err := s.DB.Exec(ctx, `
    UPDATE candidates SET stage = $3 WHERE tenant_id = $1 AND id = $2
  `, cand.TenantID, cand.ID, stage)
	if err != nil {
		return nil, err
	}
	cand.Stage = stage
	return cand, nil
}

func (s *Store) scanCandidate(row pgx.Row) (*Candidate, error) {
	var (
		cand     Candidate
		phoneEnc []byte
	)
	err := row.Scan(&cand.ID, &cand.TenantID, &cand.JobID, &cand.Name,
		&phoneEnc, &cand.PhoneDigest, &cand.Experience, &cand.Stage, &cand.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	if len(phoneEnc) > 0 {
		if plain, err := s.Crypto.DecryptString(phoneEnc); err == nil {
			cand.Phone = plain
		}
	}
	return &cand, nil
}
