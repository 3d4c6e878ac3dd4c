package dialog

import (
	"context"

	"sawa/internal/domain/auth"
	"sawa/internal/domain/company"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
)

// Directory is the company and employee roster collaborator.
type Directory interface {
	CreateWithOwner(ctx context.Context, name, email, ownerIdentity, ownerPhone, pinHash string) (*company.Company, error)
	CompanyByID(ctx context.Context, tenantID string) (*company.Company, error)
	CreateEmployee(ctx context.Context, tenantID, name, position, phone string, salary payroll.SalaryStructure) (*company.Employee, error)
	EmployeeByID(ctx context.Context, tenantID, employeeID string) (*company.Employee, error)
	EmployeeByPhoneDigest(ctx context.Context, tenantID, digest string) (*company.Employee, error)
	ListEmployees(ctx context.Context, tenantID string) ([]company.Employee, error)
}

// Credentials extends the gate's credential store with writes the dialogue
// flows need. Lookups may return a credential whose PINHash is empty: a
// known identity that has not set a PIN yet.
type Credentials interface {
	CredentialByIdentity(ctx context.Context, identity string) (auth.Credential, error)
	SetPIN(ctx context.Context, identity, pinHash string) error
}

// Runs persists payroll executions and serves stored payslips.
type Runs interface {
	CreateRun(ctx context.Context, run payroll.Run, records []payroll.Record) error
	PayslipByID(ctx context.Context, tenantID, payslipID string) (payroll.Record, error)
	LatestForEmployee(ctx context.Context, tenantID, employeeID string) (payroll.Record, error)
}

// Hiring is the recruitment collaborator, reached only through opaque
// codes and ids.
type Hiring interface {
	CreateJob(ctx context.Context, job *hiring.Job) (*hiring.Job, error)
	JobByCode(ctx context.Context, code string) (*hiring.Job, error)
	ListOpenJobs(ctx context.Context, tenantID string) ([]hiring.Job, error)
	CloseJob(ctx context.Context, tenantID, jobID string) error
	AddCandidate(ctx context.Context, job *hiring.Job, name, phone, experience string) (*hiring.Candidate, error)
	CandidatesForJob(ctx context.Context, tenantID, jobID string) ([]hiring.Candidate, error)
	AdvanceCandidate(ctx context.Context, tenantID, candidateID string) (*hiring.Candidate, error)
	RejectCandidate(ctx context.Context, tenantID, candidateID string) (*hiring.Candidate, error)
	MarkStage(ctx context.Context, tenantID, candidateID, stage string) (*hiring.Candidate, error)
}

// Gate issues and verifies the PIN and download tokens the flows rely on.
type Gate interface {
	IssueToken(ctx context.Context, identity, pin string) (string, error)
	Verify(tokenString string) (auth.Claims, error)
	IssueDownloadToken(tenantID, payslipID string) (string, error)
}

// Recorder is the audit sink. Recording is fire-and-forget; implementations
// must never fail the calling operation.
type Recorder interface {
	Record(tenantID, actorID, action, outcome, requestID string, details any)
}
