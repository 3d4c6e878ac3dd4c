package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sawa/internal/ai"
	"sawa/internal/domain/auth"
	"sawa/internal/domain/company"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
	"sawa/internal/domain/session"
	cryptoutil "sawa/internal/platform/crypto"
	"sawa/internal/platform/metrics"
)

const (
	ownerPhone     = "+2348000000001"
	employeePhone  = "+2348012345678"
	applicantPhone = "+2348000000003"
)

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeCreds struct {
	creds    map[string]auth.Credential
	failures map[string]int
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{creds: map[string]auth.Credential{}, failures: map[string]int{}}
}

func (f *fakeCreds) CredentialByIdentity(_ context.Context, identity string) (auth.Credential, error) {
	cred, ok := f.creds[identity]
	if !ok {
		return auth.Credential{}, auth.ErrNoCredential
	}
	return cred, nil
}

func (f *fakeCreds) RecordFailure(_ context.Context, identity string) error {
	f.failures[identity]++
	return nil
}

func (f *fakeCreds) SetPIN(_ context.Context, identity, pinHash string) error {
	cred := f.creds[identity]
	cred.PINHash = pinHash
	f.creds[identity] = cred
	return nil
}

type fakeDirectory struct {
	creds     *fakeCreds
	companies []company.Company
	employees []company.Employee
}

func (f *fakeDirectory) CreateWithOwner(_ context.Context, name, email, ownerIdentity, _, pinHash string) (*company.Company, error) {
	for _, comp := range f.companies {
		if strings.EqualFold(comp.Name, name) {
			return nil, company.ErrCompanyExists
		}
	}
	comp := company.Company{ID: fmt.Sprintf("comp-%d", len(f.companies)+1), Name: name, Email: email}
	f.companies = append(f.companies, comp)
	f.creds.creds[ownerIdentity] = auth.Credential{
		Identity: ownerIdentity, TenantID: comp.ID, Role: auth.RoleOwner, PINHash: pinHash,
	}
	return &comp, nil
}

func (f *fakeDirectory) CompanyByID(_ context.Context, tenantID string) (*company.Company, error) {
	for _, comp := range f.companies {
		if comp.ID == tenantID {
			out := comp
			return &out, nil
		}
	}
	return nil, company.ErrCompanyNotFound
}

func (f *fakeDirectory) CreateEmployee(_ context.Context, tenantID, name, position, phone string, salary payroll.SalaryStructure) (*company.Employee, error) {
	for _, emp := range f.employees {
		if emp.TenantID == tenantID && strings.EqualFold(emp.Name, name) {
			return nil, company.ErrEmployeeExists
		}
	}
	emp := company.Employee{
		ID:           fmt.Sprintf("emp-%d", len(f.employees)+1),
		TenantID:     tenantID,
		Code:         fmt.Sprintf("EMP%04d", len(f.employees)+1),
		Name:         name,
		Position:     position,
		Phone:        phone,
		Salary:       salary,
		LeaveBalance: company.DefaultLeaveDays,
	}
	if phone != "" {
		emp.PhoneDigest = cryptoutil.Digest(phone)
		if _, exists := f.creds.creds[emp.PhoneDigest]; !exists {
			f.creds.creds[emp.PhoneDigest] = auth.Credential{
				Identity: emp.PhoneDigest, TenantID: tenantID, Role: auth.RoleEmployee,
			}
		}
	}
	f.employees = append(f.employees, emp)
	return &emp, nil
}

func (f *fakeDirectory) EmployeeByID(_ context.Context, tenantID, employeeID string) (*company.Employee, error) {
	for _, emp := range f.employees {
		if emp.TenantID == tenantID && emp.ID == employeeID {
			out := emp
			return &out, nil
		}
	}
	return nil, company.ErrEmployeeNotFound
}

func (f *fakeDirectory) EmployeeByPhoneDigest(_ context.Context, tenantID, digest string) (*company.Employee, error) {
	for _, emp := range f.employees {
		if emp.TenantID == tenantID && emp.PhoneDigest == digest {
			out := emp
			return &out, nil
		}
	}
	return nil, company.ErrEmployeeNotFound
}

func (f *fakeDirectory) ListEmployees(_ context.Context, tenantID string) ([]company.Employee, error) {
	var out []company.Employee
	for _, emp := range f.employees {
		if emp.TenantID == tenantID {
			out = append(out, emp)
		}
	}
	return out, nil
}

type fakeRuns struct {
	runs    []payroll.Run
	records []payroll.Record
}

func (f *fakeRuns) CreateRun(_ context.Context, run payroll.Run, records []payroll.Record) error {
	f.runs = append(f.runs, run)
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeRuns) PayslipByID(_ context.Context, tenantID, payslipID string) (payroll.Record, error) {
	for _, rec := range f.records {
		if rec.TenantID == tenantID && rec.ID == payslipID {
			return rec, nil
		}
	}
	return payroll.Record{}, payroll.ErrPayslipNotFound
}

func (f *fakeRuns) LatestForEmployee(_ context.Context, tenantID, employeeID string) (payroll.Record, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].TenantID == tenantID && f.records[i].EmployeeID == employeeID {
			return f.records[i], nil
		}
	}
	return payroll.Record{}, payroll.ErrPayslipNotFound
}

type fakeHiring struct {
	jobs       []hiring.Job
	candidates []hiring.Candidate
}

func (f *fakeHiring) CreateJob(_ context.Context, job *hiring.Job) (*hiring.Job, error) {
	out := *job
	out.ID = fmt.Sprintf("job-%d", len(f.jobs)+1)
	out.Code = fmt.Sprintf("SAW-%04d", len(f.jobs)+1)
	out.Status = hiring.JobOpen
	f.jobs = append(f.jobs, out)
	return &out, nil
}

func (f *fakeHiring) JobByCode(_ context.Context, code string) (*hiring.Job, error) {
	for _, job := range f.jobs {
		if strings.EqualFold(job.Code, strings.TrimSpace(code)) {
			out := job
			return &out, nil
		}
	}
	return nil, hiring.ErrJobNotFound
}

func (f *fakeHiring) ListOpenJobs(_ context.Context, tenantID string) ([]hiring.Job, error) {
	var out []hiring.Job
	for _, job := range f.jobs {
		if job.TenantID == tenantID && job.Status == hiring.JobOpen {
			out = append(out, job)
		}
	}
	return out, nil
}

func (f *fakeHiring) CloseJob(_ context.Context, tenantID, jobID string) error {
	for i := range f.jobs {
		if f.jobs[i].TenantID == tenantID && f.jobs[i].ID == jobID {
			f.jobs[i].Status = hiring.JobClosed
			return nil
		}
	}
	return hiring.ErrJobNotFound
}

func (f *fakeHiring) AddCandidate(_ context.Context, job *hiring.Job, name, phone, experience string) (*hiring.Candidate, error) {
	if job.Status != hiring.JobOpen {
		return nil, hiring.ErrJobClosed
	}
	cand := hiring.Candidate{
		ID:         fmt.Sprintf("cand-%d", len(f.candidates)+1),
		TenantID:   job.TenantID,
		JobID:      job.ID,
		Name:       name,
		Phone:      phone,
		Experience: experience,
		Stage:      hiring.StageApplied,
	}
	f.candidates = append(f.candidates, cand)
	return &cand, nil
}

func (f *fakeHiring) CandidatesForJob(_ context.Context, tenantID, jobID string) ([]hiring.Candidate, error) {
	var out []hiring.Candidate
	for _, cand := range f.candidates {
		if cand.TenantID == tenantID && cand.JobID == jobID {
			out = append(out, cand)
		}
	}
	return out, nil
}

func (f *fakeHiring) setStage(tenantID, candidateID, stage string) (*hiring.Candidate, error) {
	for i := range f.candidates {
		if f.candidates[i].TenantID == tenantID && f.candidates[i].ID == candidateID {
			f.candidates[i].Stage = stage
			out := f.candidates[i]
			return &out, nil
		}
	}
	return nil, hiring.ErrCandidateNotFound
}

func (f *fakeHiring) AdvanceCandidate(ctx context.Context, tenantID, candidateID string) (*hiring.Candidate, error) {
	for _, cand := range f.candidates {
		if cand.TenantID == tenantID && cand.ID == candidateID {
			next, ok := hiring.NextStage(cand.Stage)
			if !ok {
				return nil, hiring.ErrFinalStage
			}
			return f.setStage(tenantID, candidateID, next)
		}
	}
	return nil, hiring.ErrCandidateNotFound
}

func (f *fakeHiring) RejectCandidate(_ context.Context, tenantID, candidateID string) (*hiring.Candidate, error) {
	return f.setStage(tenantID, candidateID, hiring.StageRejected)
}

func (f *fakeHiring) MarkStage(_ context.Context, tenantID, candidateID, stage string) (*hiring.Candidate, error) {
	return f.setStage(tenantID, candidateID, stage)
}

type fakeAI struct {
	result ai.Result
	err    error
	answer string
}

func (f *fakeAI) Classify(context.Context, string) (ai.Result, error) {
	return f.result, f.err
}

func (f *fakeAI) Answer(context.Context, string) (string, error) {
	return f.answer, f.err
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, string, string, string, any) {}

// ── fixture ────────────────────────────────────────────────────────────────

type fixture struct {
	svc      *Service
	dir      *fakeDirectory
	creds    *fakeCreds
	runs     *fakeRuns
	jobs     *fakeHiring
	locker   *session.Locker
	sessions *session.MemoryStore
}

func newFixture(classifier ai.Classifier) *fixture {
	collector := metrics.New()
	creds := newFakeCreds()
	dir := &fakeDirectory{creds: creds}
	runs := &fakeRuns{}
	jobs := &fakeHiring{}
	gate := auth.NewGate("test-secret", 10*time.Minute, creds)
	engine := NewEngine(dir, creds, runs, jobs, gate, classifier, time.Second,
		nopRecorder{}, collector, payroll.DefaultStatutoryConfig(), "https://sawa.example")
	locker := session.NewLocker()
	sessions := session.NewMemoryStore(30 * time.Minute)
	svc := NewService(sessions, locker,
		NewRouter(classifier, time.Second, collector), engine, collector, 500)
	return &fixture{svc: svc, dir: dir, creds: creds, runs: runs, jobs: jobs, locker: locker, sessions: sessions}
}

// storedSession reads phone's persisted session straight from the store.
func (f *fixture) storedSession(t *testing.T, phone string) *session.Session {
	t.Helper()
	sess, err := f.sessions.Get(context.Background(), cryptoutil.Digest(normalizePhone(phone)))
	if err != nil {
		t.Fatalf("session load: %v", err)
	}
	if sess == nil {
		t.Fatalf("no session for %s", phone)
	}
	return sess
}

func (f *fixture) send(t *testing.T, phone, text string) string {
	t.Helper()
	return f.svc.HandleMessage(context.Background(), phone, text)
}

// register walks the whole registration flow for phone with PIN 1234.
func (f *fixture) register(t *testing.T, phone, companyName string) {
	t.Helper()
	f.send(t, phone, "REGISTER")
	f.send(t, phone, companyName)
	f.send(t, phone, "hr@"+strings.ToLower(strings.Fields(companyName)[0])+".ng")
	reply := f.send(t, phone, "1234")
	if !strings.Contains(reply, "Registered") {
		t.Fatalf("registration did not complete: %q", reply)
	}
}

// addEmployee walks the add-employee flow.
func (f *fixture) addEmployee(t *testing.T, ownerPhone, name, phone, position, basic string) {
	t.Helper()
	f.send(t, ownerPhone, "ADD EMPLOYEE")
	f.send(t, ownerPhone, name)
	f.send(t, ownerPhone, phone)
	f.send(t, ownerPhone, position)
	f.send(t, ownerPhone, basic)
	f.send(t, ownerPhone, "0")
	f.send(t, ownerPhone, "0")
	reply := f.send(t, ownerPhone, "0")
	if !strings.Contains(reply, "Employee Added") {
		t.Fatalf("add-employee did not complete: %q", reply)
	}
}

// ── tests ──────────────────────────────────────────────────────────────────

func TestFullOnboardingAndPayrollScenario(t *testing.T) {
	f := newFixture(ai.Noop{})

	if reply := f.send(t, ownerPhone, "hi there"); !strings.Contains(reply, "Sawa HR") {
		t.Errorf("unrecognized input should show the menu, got %q", reply)
	}

	// Registration.
	if reply := f.send(t, ownerPhone, "REGISTER"); !strings.Contains(reply, "Company name") {
		t.Fatalf("REGISTER: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "Acme Ltd"); !strings.Contains(reply, "email") {
		t.Fatalf("company name: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "not-an-email"); !strings.Contains(reply, "email") {
		t.Fatalf("bad email should re-prompt: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "hr@acme.ng"); !strings.Contains(reply, "PIN") {
		t.Fatalf("email: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "12a4"); !strings.Contains(reply, "4 digits") {
		t.Fatalf("bad PIN should re-prompt: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "1234"); !strings.Contains(reply, "Registered") {
		t.Fatalf("PIN: %q", reply)
	}
	if len(f.dir.companies) != 1 {
		t.Fatalf("expected one company, got %d", len(f.dir.companies))
	}

	// Employee onboarding with a validation stumble on the salary.
	f.send(t, ownerPhone, "ADD EMPLOYEE")
	f.send(t, ownerPhone, "John Doe")
	if reply := f.send(t, ownerPhone, "12"); !strings.Contains(reply, "phone") {
		t.Errorf("short phone should re-prompt: %q", reply)
	}
	f.send(t, ownerPhone, employeePhone)
	f.send(t, ownerPhone, "Accountant")
	if reply := f.send(t, ownerPhone, "lots"); reply != replyAmountInvalid {
		t.Errorf("bad amount: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "450k"); !strings.Contains(reply, "HOUSING") {
		t.Fatalf("basic: %q", reply)
	}
	f.send(t, ownerPhone, "0")
	f.send(t, ownerPhone, "0")
	reply := f.send(t, ownerPhone, "0")
	if !strings.Contains(reply, "Employee Added") || !strings.Contains(reply, "EMP0001") {
		t.Fatalf("employee commit: %q", reply)
	}
	if len(f.dir.employees) != 1 {
		t.Fatalf("expected one employee, got %d", len(f.dir.employees))
	}
	if f.dir.employees[0].Salary.Basic != payroll.Kobo(45_000_000) {
		t.Errorf("450k should store 45,000,000 kobo, got %d", f.dir.employees[0].Salary.Basic)
	}

	// Payroll is gated by PIN.
	if reply := f.send(t, ownerPhone, "PAYROLL"); reply != replyPinPrompt {
		t.Fatalf("payroll should ask for PIN: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "9999"); reply != replyPinWrong {
		t.Fatalf("wrong PIN: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "1234"); !strings.Contains(reply, "Reply YES") {
		t.Fatalf("PIN ok should resume payroll: %q", reply)
	}

	summary := f.send(t, ownerPhone, "yes")
	if !strings.Contains(summary, "TOTAL NET") || !strings.Contains(summary, "Reply 1-1") {
		t.Fatalf("payroll summary: %q", summary)
	}
	if len(f.runs.runs) != 1 || len(f.runs.records) != 1 {
		t.Fatalf("expected one persisted run with one record")
	}

	// A retried delivery of the confirmation must not run payroll twice.
	if replay := f.send(t, ownerPhone, "yes"); replay != summary {
		t.Errorf("duplicate delivery should replay the summary verbatim")
	}
	if len(f.runs.runs) != 1 {
		t.Errorf("duplicate delivery re-ran payroll: %d runs", len(f.runs.runs))
	}

	// Selection protocol.
	if reply := f.send(t, ownerPhone, "7"); !strings.Contains(reply, "1-1") {
		t.Errorf("out-of-range selection: %q", reply)
	}
	slip := f.send(t, ownerPhone, "1")
	if !strings.Contains(slip, "NET PAY") || !strings.Contains(slip, "John Doe") {
		t.Fatalf("payslip selection: %q", slip)
	}
	if !strings.Contains(slip, "https://sawa.example/payslips/pdf?token=") {
		t.Errorf("stored payslip should carry a PDF link: %q", slip)
	}

	// Valid token skips the gate transparently.
	if reply := f.send(t, ownerPhone, "PAYSLIP"); !strings.Contains(reply, "NET PAY") {
		t.Errorf("payslip with live token should not re-prompt for PIN: %q", reply)
	}
}

func TestEmployeeSelfService(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")
	f.addEmployee(t, ownerPhone, "John Doe", employeePhone, "Accountant", "450000")

	if reply := f.send(t, employeePhone, "PAYSLIP"); !strings.Contains(reply, "John Doe") || !strings.Contains(reply, "NET PAY") {
		t.Errorf("employee payslip: %q", reply)
	}
	if reply := f.send(t, employeePhone, "LEAVE"); !strings.Contains(reply, "21 days") {
		t.Errorf("leave balance: %q", reply)
	}
	if reply := f.send(t, employeePhone, "ADD EMPLOYEE"); reply != replyManagersOnly {
		t.Errorf("employee must not add employees: %q", reply)
	}

	stranger := "+2347000000000"
	if reply := f.send(t, stranger, "PAYSLIP"); !strings.Contains(reply, "No employee record") {
		t.Errorf("unknown sender payslip: %q", reply)
	}
}

func TestCancelSemantics(t *testing.T) {
	f := newFixture(ai.Noop{})

	if reply := f.send(t, ownerPhone, "CANCEL"); reply != replyNothingToDo {
		t.Errorf("CANCEL from idle: %q", reply)
	}

	f.send(t, ownerPhone, "REGISTER")
	f.send(t, ownerPhone, "Acme Ltd")
	if reply := f.send(t, ownerPhone, "CANCEL"); reply != replyCancelled {
		t.Errorf("CANCEL mid-flow: %q", reply)
	}

	// The discarded partial input must not leak into a later flow.
	f.send(t, ownerPhone, "REGISTER")
	f.send(t, ownerPhone, "Other Co")
	f.send(t, ownerPhone, "hr@other.ng")
	f.send(t, ownerPhone, "1234")
	if len(f.dir.companies) != 1 || f.dir.companies[0].Name != "Other Co" {
		t.Errorf("expected only the second registration to commit: %+v", f.dir.companies)
	}
}

func TestExactCommandsUnaffectedByAIFailure(t *testing.T) {
	broken := &fakeAI{err: errors.New("api down")}
	f := newFixture(broken)

	if reply := f.send(t, ownerPhone, "REGISTER"); !strings.Contains(reply, "Company name") {
		t.Errorf("REGISTER must resolve with AI down: %q", reply)
	}
	f.send(t, ownerPhone, "CANCEL")

	// Free text with AI down falls through to the menu, never an error.
	if reply := f.send(t, ownerPhone, "what can you do"); !strings.Contains(reply, "Sawa HR") {
		t.Errorf("AI failure must fall back to the menu: %q", reply)
	}
}

func TestAIIntentPrefillsAddEmployee(t *testing.T) {
	classifier := &fakeAI{result: ai.Result{
		Intent:   ai.IntentAddEmployee,
		Entities: map[string]string{"name": "Jane", "position": "engineer"},
	}}
	f := newFixture(classifier)
	f.register(t, ownerPhone, "Acme Ltd")

	reply := f.send(t, ownerPhone, "please add Jane as an engineer")
	if !strings.Contains(reply, "Jane") || !strings.Contains(reply, "Phone number") {
		t.Fatalf("AI prefill should skip to the phone step: %q", reply)
	}
	f.send(t, ownerPhone, "2348099999999")
	f.send(t, ownerPhone, "300k")
	f.send(t, ownerPhone, "0")
	f.send(t, ownerPhone, "0")
	done := f.send(t, ownerPhone, "0")
	if !strings.Contains(done, "Employee Added") || !strings.Contains(done, "engineer") {
		t.Fatalf("prefilled flow should complete: %q", done)
	}
}

func TestActiveFlowTextNeverReachesAI(t *testing.T) {
	// A classifier that would hijack the flow if consulted.
	classifier := &fakeAI{result: ai.Result{Intent: ai.IntentPayroll}}
	f := newFixture(classifier)
	f.register(t, ownerPhone, "Acme Ltd")

	f.send(t, ownerPhone, "ADD EMPLOYEE")
	reply := f.send(t, ownerPhone, "run payroll for everyone")
	if !strings.Contains(reply, "Phone number") {
		t.Errorf("free text mid-flow must be treated as field input: %q", reply)
	}
}

func TestBusyIdentityRejected(t *testing.T) {
	f := newFixture(ai.Noop{})

	digest := cryptoutil.Digest("2348000000001")
	if !f.locker.TryAcquire(digest) {
		t.Fatal("setup: could not take the lock")
	}
	defer f.locker.Release(digest)

	if reply := f.send(t, ownerPhone, "HELP"); reply != replyBusy {
		t.Errorf("concurrent message for a held identity: %q", reply)
	}

	// Other identities proceed.
	if reply := f.send(t, applicantPhone, "HELP"); !strings.Contains(reply, "Sawa HR") {
		t.Errorf("unrelated identity blocked: %q", reply)
	}
}

func TestPinResetFlow(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")

	if reply := f.send(t, ownerPhone, "RESET PIN"); reply != replyPinPrompt {
		t.Fatalf("reset should gate on the current PIN: %q", reply)
	}
	f.send(t, ownerPhone, "1234")
	if reply := f.send(t, ownerPhone, "5678"); !strings.Contains(reply, "PIN set") {
		t.Fatalf("new PIN: %q", reply)
	}

	// Old PIN no longer opens the gate. The token from the reset is still
	// live, so expire it by clearing the session first.
	f.send(t, ownerPhone, "CANCEL")
	digest := cryptoutil.Digest("2348000000001")
	if err := f.svc.Sessions.Delete(context.Background(), digest); err != nil {
		t.Fatal(err)
	}
	f.send(t, ownerPhone, "PAYROLL")
	if reply := f.send(t, ownerPhone, "1234"); reply != replyPinWrong {
		t.Errorf("old PIN should fail after reset: %q", reply)
	}
	if reply := f.send(t, ownerPhone, "5678"); strings.Contains(reply, "Wrong PIN") {
		t.Errorf("new PIN should pass: %q", reply)
	}
}

func TestHiringPipeline(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")

	// Post a job.
	f.send(t, ownerPhone, "POST JOB")
	f.send(t, ownerPhone, "Backend Engineer")
	f.send(t, ownerPhone, "Build payroll systems")
	f.send(t, ownerPhone, "3 years Go")
	f.send(t, ownerPhone, "Lagos")
	if reply := f.send(t, ownerPhone, "skip"); !strings.Contains(reply, "Not specified") {
		t.Fatalf("salary skip: %q", reply)
	}
	posted := f.send(t, ownerPhone, "yes")
	if !strings.Contains(posted, "Job posted") || !strings.Contains(posted, "SAW-") {
		t.Fatalf("job post: %q", posted)
	}
	code := f.jobs.jobs[0].Code

	// Two applicants apply by code.
	if reply := f.send(t, applicantPhone, "APPLY "+code); !strings.Contains(reply, "Backend Engineer") {
		t.Fatalf("apply: %q", reply)
	}
	f.send(t, applicantPhone, "Ada Obi")
	submitted := f.send(t, applicantPhone, "5 years building services")
	if !strings.Contains(submitted, "Application submitted") {
		t.Fatalf("application: %q", submitted)
	}
	secondApplicant := "+2348000000004"
	f.send(t, secondApplicant, "APPLY "+code)
	f.send(t, secondApplicant, "Ben Eze")
	f.send(t, secondApplicant, "2 years at a fintech")

	if reply := f.send(t, applicantPhone, "APPLY SAW-NOPE"); !strings.Contains(reply, "Couldn't find job code") {
		t.Errorf("unknown code: %q", reply)
	}

	// Employer reviews and advances a candidate.
	list := f.send(t, ownerPhone, "CANDIDATES")
	if !strings.Contains(list, "2 applicant") {
		t.Fatalf("candidates menu: %q", list)
	}
	cands := f.send(t, ownerPhone, "1")
	if !strings.Contains(cands, "Ada Obi") || !strings.Contains(cands, "Ben Eze") {
		t.Fatalf("candidate list: %q", cands)
	}
	actions := f.send(t, ownerPhone, "2")
	if !strings.Contains(actions, "Ben Eze") || !strings.Contains(actions, "Advance") {
		t.Fatalf("action menu: %q", actions)
	}
	advanced := f.send(t, ownerPhone, "1")
	if !strings.Contains(advanced, "SCREENING") {
		t.Errorf("advance: %q", advanced)
	}
}

func TestHiringCandidateClosesJob(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")

	f.send(t, ownerPhone, "POST JOB")
	f.send(t, ownerPhone, "Backend Engineer")
	f.send(t, ownerPhone, "Build payroll systems")
	f.send(t, ownerPhone, "3 years Go")
	f.send(t, ownerPhone, "Lagos")
	f.send(t, ownerPhone, "skip")
	f.send(t, ownerPhone, "yes")
	code := f.jobs.jobs[0].Code

	f.send(t, applicantPhone, "APPLY "+code)
	f.send(t, applicantPhone, "Ada Obi")
	f.send(t, applicantPhone, "5 years building services")
	secondApplicant := "+2348000000004"
	f.send(t, secondApplicant, "APPLY "+code)
	f.send(t, secondApplicant, "Ben Eze")
	f.send(t, secondApplicant, "2 years at a fintech")

	// Walk Ben from applied to hired: screening, interview, offer, hired.
	var last string
	for i := 0; i < 4; i++ {
		f.send(t, ownerPhone, "CANDIDATES")
		f.send(t, ownerPhone, "1")
		f.send(t, ownerPhone, "2")
		last = f.send(t, ownerPhone, "1")
	}

	if !strings.Contains(last, "HIRED") {
		t.Fatalf("final advance: %q", last)
	}
	if !strings.Contains(last, "posting is now closed") {
		t.Fatalf("expected closure notice: %q", last)
	}
	if f.jobs.jobs[0].Status != hiring.JobClosed {
		t.Fatalf("job status = %q", f.jobs.jobs[0].Status)
	}

	// A filled role takes no more applications.
	if reply := f.send(t, applicantPhone, "APPLY "+code); !strings.Contains(reply, "no longer accepting") {
		t.Fatalf("apply after close: %q", reply)
	}
}

func TestSameNumberPicksJobThenCandidate(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")

	f.send(t, ownerPhone, "POST JOB")
	f.send(t, ownerPhone, "Backend Engineer")
	f.send(t, ownerPhone, "Build payroll systems")
	f.send(t, ownerPhone, "3 years Go")
	f.send(t, ownerPhone, "Lagos")
	f.send(t, ownerPhone, "skip")
	f.send(t, ownerPhone, "yes")
	code := f.jobs.jobs[0].Code

	f.send(t, applicantPhone, "APPLY "+code)
	f.send(t, applicantPhone, "Ada Obi")
	f.send(t, applicantPhone, "5 years building services")

	// The same number twice in a row: job 1, then candidate 1. The second
	// "1" is an in-range pick for a freshly shown list and must select,
	// not replay the list.
	f.send(t, ownerPhone, "CANDIDATES")
	cands := f.send(t, ownerPhone, "1")
	if !strings.Contains(cands, "Ada Obi") {
		t.Fatalf("candidate list: %q", cands)
	}
	actions := f.send(t, ownerPhone, "1")
	if actions == cands {
		t.Fatalf("second 1 replayed the candidate list instead of selecting")
	}
	if !strings.Contains(actions, "Advance") {
		t.Fatalf("action menu: %q", actions)
	}
}

func TestConcurrentIdentitiesDoNotInterleave(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")
	f.register(t, "+2349000000001", "Zen Co")

	// Interleave two registrations' worth of traffic across tenants and
	// check neither session corrupts the other.
	f.send(t, ownerPhone, "ADD EMPLOYEE")
	f.send(t, "+2349000000001", "ADD EMPLOYEE")
	f.send(t, ownerPhone, "John Doe")
	f.send(t, "+2349000000001", "Mary Major")
	f.send(t, ownerPhone, "2348012345678")
	f.send(t, "+2349000000001", "2348055555555")
	f.send(t, ownerPhone, "Accountant")
	f.send(t, "+2349000000001", "Designer")
	for _, phone := range []string{ownerPhone, "+2349000000001"} {
		f.send(t, phone, "200k")
		f.send(t, phone, "0")
		f.send(t, phone, "0")
		f.send(t, phone, "0")
	}

	if len(f.dir.employees) != 2 {
		t.Fatalf("expected two employees, got %d", len(f.dir.employees))
	}
	if f.dir.employees[0].TenantID == f.dir.employees[1].TenantID {
		t.Errorf("employees landed in the same tenant")
	}
	if f.dir.employees[0].Name != "John Doe" || f.dir.employees[1].Name != "Mary Major" {
		t.Errorf("names crossed tenants: %+v", f.dir.employees)
	}
}

func TestDuplicateEmployeeNameReprompts(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")
	f.addEmployee(t, ownerPhone, "John Doe", employeePhone, "Accountant", "200k")

	f.send(t, ownerPhone, "ADD EMPLOYEE")
	if reply := f.send(t, ownerPhone, "john doe"); !strings.Contains(reply, "already exists") {
		t.Errorf("duplicate name: %q", reply)
	}
}

func TestWrongPinRecordsFailure(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")
	f.addEmployee(t, ownerPhone, "John Doe", employeePhone, "Accountant", "200k")

	digest := cryptoutil.Digest("2348000000001")
	f.send(t, ownerPhone, "PAYROLL")
	f.send(t, ownerPhone, "0000")
	f.send(t, ownerPhone, "1111")
	if f.creds.failures[digest] != 2 {
		t.Errorf("expected 2 recorded failures, got %d", f.creds.failures[digest])
	}
}

func TestPinNeverPersistedInSession(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")

	if got := f.storedSession(t, ownerPhone).LastInput; got != "" {
		t.Fatalf("registration PIN survived in last input: %q", got)
	}

	f.addEmployee(t, ownerPhone, "John Doe", employeePhone, "Accountant", "200k")
	f.send(t, ownerPhone, "PAYROLL")
	f.send(t, ownerPhone, "9999")
	if got := f.storedSession(t, ownerPhone).LastInput; got != "" {
		t.Fatalf("wrong PIN attempt survived in last input: %q", got)
	}
	f.send(t, ownerPhone, "1234")
	if got := f.storedSession(t, ownerPhone).LastInput; got != "" {
		t.Fatalf("verification PIN survived in last input: %q", got)
	}
}

func TestHRQuestionAnswered(t *testing.T) {
	classifier := &fakeAI{
		result: ai.Result{Intent: ai.IntentHRQuestion},
		answer: "The national minimum wage is 70,000 naira per month.",
	}
	f := newFixture(classifier)

	reply := f.send(t, ownerPhone, "what is the minimum wage in Nigeria?")
	if !strings.Contains(reply, "HR Info") || !strings.Contains(reply, "70,000") {
		t.Errorf("HR question: %q", reply)
	}
}

// Pre-seeded credential helper keeps bcrypt cheap in tests that do not
// exercise registration.
func seedCredential(f *fixture, identity, tenantID, role, pin string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	f.creds.creds[identity] = auth.Credential{
		Identity: identity, TenantID: tenantID, Role: role, PINHash: string(hash),
	}
}

func TestUnknownIdentityCommands(t *testing.T) {
	f := newFixture(ai.Noop{})

	for _, cmd := range []string{"PAYROLL", "LIST", "POST JOB", "CANDIDATES"} {
		if reply := f.send(t, ownerPhone, cmd); reply != replyNotRegistered {
			t.Errorf("%s from unknown identity: %q", cmd, reply)
		}
	}
	if reply := f.send(t, ownerPhone, "RESET PIN"); reply != replyNotRegistered {
		t.Errorf("RESET PIN from unknown identity: %q", reply)
	}
}

func TestAdminRoleCanManage(t *testing.T) {
	f := newFixture(ai.Noop{})
	f.register(t, ownerPhone, "Acme Ltd")
	tenant := f.dir.companies[0].ID

	adminPhone := "+2348022222222"
	seedCredential(f, cryptoutil.Digest("2348022222222"), tenant, auth.RoleAdmin, "4321")

	if reply := f.send(t, adminPhone, "ADD EMPLOYEE"); !strings.Contains(reply, "full name") {
		t.Errorf("admin should manage the roster: %q", reply)
	}
}
