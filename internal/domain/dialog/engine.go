package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sawa/internal/ai"
	"sawa/internal/domain/auth"
	"sawa/internal/domain/company"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
	"sawa/internal/domain/session"
	"sawa/internal/platform/metrics"
	"sawa/internal/requestctx"
)

// Engine is the conversation state machine. Every transition is total: any
// input in any state produces a reply and a well-defined next state. An
// error return means a collaborator failed mid-transition; the caller must
// not persist the session and replies with a generic retry message.
type Engine struct {
	Directory Directory
	Creds     Credentials
	Runs      Runs
	Jobs      Hiring
	Gate      Gate
	AI        ai.Classifier
	AITimeout time.Duration
	Audit     Recorder
	Metrics   *metrics.Collector
	Statutory payroll.StatutoryConfig
	BaseURL   string

	now func() time.Time
}

func NewEngine(dir Directory, creds Credentials, runs Runs, jobs Hiring, gate Gate, classifier ai.Classifier, aiTimeout time.Duration, rec Recorder, collector *metrics.Collector, statutory payroll.StatutoryConfig, baseURL string) *Engine {
	return &Engine{
		Directory: dir,
		Creds:     creds,
		Runs:      runs,
		Jobs:      jobs,
		Gate:      gate,
		AI:        classifier,
		AITimeout: aiTimeout,
		Audit:     rec,
		Metrics:   collector,
		Statutory: statutory,
		BaseURL:   baseURL,
		now:       time.Now,
	}
}

// Handle applies one resolved action to the session, mutating it in place,
// and returns the outbound reply. phone is the sender's raw number, needed
// only where a flow stores an encrypted copy; it must never end up in the
// session or any log.
func (e *Engine) Handle(ctx context.Context, sess *session.Session, act Action, phone string) (string, error) {
	switch act.Kind {
	case KindCommand:
		return e.command(ctx, sess, act, phone)
	case KindInput:
		return e.input(ctx, sess, act.Text, phone)
	case KindQuestion:
		return e.question(ctx, act.Text), nil
	default:
		e.Metrics.RecordUnrecognized()
		return menuText, nil
	}
}

func (e *Engine) command(ctx context.Context, sess *session.Session, act Action, phone string) (string, error) {
	switch act.Command {
	case CmdHelp:
		e.reset(sess)
		return menuText, nil

	case CmdCancel:
		if sess.State == StateIdle && len(sess.Data) == 0 {
			return replyNothingToDo, nil
		}
		e.reset(sess)
		return replyCancelled, nil

	case CmdRegister:
		return e.startRegistration(ctx, sess)

	case CmdAddEmployee:
		return e.startAddEmployee(ctx, sess, act)

	case CmdPayroll:
		return e.startPayroll(ctx, sess)

	case CmdPayslip:
		return e.startPayslip(ctx, sess)

	case CmdLeave:
		return e.leave(ctx, sess)

	case CmdList:
		return e.list(ctx, sess)

	case CmdResetPin:
		return e.startResetPin(ctx, sess)

	case CmdPostJob:
		return e.startPostJob(ctx, sess)

	case CmdCandidates:
		return e.startCandidates(ctx, sess)

	case CmdApply:
		return e.startApply(ctx, sess, act.Entities["job_code"])
	}
	e.Metrics.RecordUnrecognized()
	return menuText, nil
}

func (e *Engine) reset(sess *session.Session) {
	sess.ClearFlow()
	sess.State = StateIdle
}

// requireManager resolves the sender's credential and checks the role that
// employer commands need. A non-empty deny reply means stop.
func (e *Engine) requireManager(ctx context.Context, sess *session.Session) (auth.Credential, string, error) {
	cred, err := e.Creds.CredentialByIdentity(ctx, sess.Identity)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredential) {
			return auth.Credential{}, replyNotRegistered, nil
		}
		return auth.Credential{}, "", err
	}
	if cred.TenantID == "" {
		return auth.Credential{}, replyNotRegistered, nil
	}
	if !auth.CanManage(cred.Role) {
		return auth.Credential{}, replyManagersOnly, nil
	}
	return cred, "", nil
}

// pinValid reports whether the session already holds a live PIN token for
// this identity, which skips the gate transparently.
func (e *Engine) pinValid(sess *session.Session) bool {
	claims, err := e.Gate.Verify(sess.PinToken)
	return err == nil && claims.Identity == sess.Identity
}

// gate routes a sensitive command through PIN verification unless a valid
// token is held. A credential with no PIN set is not gated.
func (e *Engine) gate(sess *session.Session, cred auth.Credential, command string) (string, bool) {
	if e.pinValid(sess) || cred.PINHash == "" {
		return "", false
	}
	sess.State = StateAwaitPinVerify
	sess.Set(keyResumeCommand, command)
	return replyPinPrompt, true
}

func (e *Engine) startRegistration(ctx context.Context, sess *session.Session) (string, error) {
	cred, err := e.Creds.CredentialByIdentity(ctx, sess.Identity)
	if err == nil && cred.Role == auth.RoleOwner {
		return "You're already registered! Type HELP for commands.", nil
	}
	if err != nil && !errors.Is(err, auth.ErrNoCredential) {
		return "", err
	}
	sess.ClearFlow()
	sess.State = StateAwaitCompanyName
	return "*Company Registration*\n\nCompany name?", nil
}

func (e *Engine) startAddEmployee(ctx context.Context, sess *session.Session, act Action) (string, error) {
	cred, deny, err := e.requireManager(ctx, sess)
	if err != nil || deny != "" {
		return deny, err
	}
	sess.ClearFlow()
	sess.TenantID = cred.TenantID

	// AI-extracted entities pre-fill the flow mid-way.
	if name := strings.TrimSpace(act.Entities["name"]); name != "" {
		sess.Set(keyEmployeeName, name)
		if position := strings.TrimSpace(act.Entities["position"]); position != "" {
			sess.Set(keyEmployeePosition, position)
			sess.State = StateAwaitEmployeePhone
			return fmt.Sprintf("Adding *%s* as *%s*\n\nPhone number?", name, position), nil
		}
		sess.State = StateAwaitEmployeePhone
		return fmt.Sprintf("Adding *%s*\n\nPhone number?", name), nil
	}

	sess.State = StateAwaitEmployeeName
	return "*Add Employee*\n\nEmployee's full name?", nil
}

func (e *Engine) startPayroll(ctx context.Context, sess *session.Session) (string, error) {
	cred, deny, err := e.requireManager(ctx, sess)
	if err != nil || deny != "" {
		return deny, err
	}
	sess.TenantID = cred.TenantID
	if prompt, gated := e.gate(sess, cred, CmdPayroll); gated {
		return prompt, nil
	}

	emps, err := e.Directory.ListEmployees(ctx, cred.TenantID)
	if err != nil {
		return "", err
	}
	if len(emps) == 0 {
		e.reset(sess)
		return replyNoEmployees, nil
	}

	sess.ClearFlow()
	sess.State = StateConfirmPayrollRun
	return payrollConfirmReply(emps, e.now().Format("January 2006")), nil
}

func (e *Engine) startPayslip(ctx context.Context, sess *session.Session) (string, error) {
	cred, err := e.Creds.CredentialByIdentity(ctx, sess.Identity)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredential) {
			return replyNoEmployeeRec, nil
		}
		return "", err
	}

	// Employee self-service: resolve own record by phone digest.
	if !auth.CanManage(cred.Role) {
		emp, err := e.Directory.EmployeeByPhoneDigest(ctx, cred.TenantID, sess.Identity)
		if err != nil {
			if errors.Is(err, company.ErrEmployeeNotFound) {
				return replyNoEmployeeRec, nil
			}
			return "", err
		}
		e.Audit.Record(cred.TenantID, sess.Identity, "VIEW_OWN_PAYSLIP", "ok", requestctx.GetRequestID(ctx), nil)
		return e.payslipForEmployee(ctx, emp)
	}

	// Employer view of any employee's payslip is a gated transition.
	sess.TenantID = cred.TenantID
	if prompt, gated := e.gate(sess, cred, CmdPayslip); gated {
		return prompt, nil
	}

	emps, err := e.Directory.ListEmployees(ctx, cred.TenantID)
	if err != nil {
		return "", err
	}
	switch len(emps) {
	case 0:
		e.reset(sess)
		return replyNoEmployees, nil
	case 1:
		e.reset(sess)
		e.Audit.Record(cred.TenantID, sess.Identity, "VIEW_PAYSLIP", "ok", requestctx.GetRequestID(ctx), map[string]string{"employee": emps[0].Code})
		return e.payslipForEmployee(ctx, &emps[0])
	}

	sess.ClearFlow()
	sess.State = StateAwaitPayslipSelection
	sess.Set(keySelectionKind, selectEmployee)
	var b strings.Builder
	b.WriteString("*Select Employee*\n\n")
	for i, emp := range emps {
		sess.Selection = append(sess.Selection, emp.ID)
		fmt.Fprintf(&b, "*%d.* %s\n", i+1, emp.Name)
	}
	fmt.Fprintf(&b, "\nReply 1-%d", len(emps))
	return b.String(), nil
}

func (e *Engine) leave(ctx context.Context, sess *session.Session) (string, error) {
	cred, err := e.Creds.CredentialByIdentity(ctx, sess.Identity)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredential) {
			return replyNoEmployeeRec, nil
		}
		return "", err
	}

	if !auth.CanManage(cred.Role) {
		emp, err := e.Directory.EmployeeByPhoneDigest(ctx, cred.TenantID, sess.Identity)
		if err != nil {
			if errors.Is(err, company.ErrEmployeeNotFound) {
				return replyNoEmployeeRec, nil
			}
			return "", err
		}
		return leaveBalanceReply(emp, e.now().Year()), nil
	}

	emps, err := e.Directory.ListEmployees(ctx, cred.TenantID)
	if err != nil {
		return "", err
	}
	if len(emps) == 0 {
		return replyNoEmployees, nil
	}
	return leaveOverviewReply(emps), nil
}

func (e *Engine) list(ctx context.Context, sess *session.Session) (string, error) {
	cred, deny, err := e.requireManager(ctx, sess)
	if err != nil || deny != "" {
		return deny, err
	}
	emps, err := e.Directory.ListEmployees(ctx, cred.TenantID)
	if err != nil {
		return "", err
	}
	if len(emps) == 0 {
		return replyNoEmployees, nil
	}
	title := "Your"
	if comp, err := e.Directory.CompanyByID(ctx, cred.TenantID); err == nil {
		title = comp.Name
	}
	return rosterReply(title, emps), nil
}

// startResetPin changes an existing PIN behind the gate, or sets a first
// PIN for a credential that has none.
func (e *Engine) startResetPin(ctx context.Context, sess *session.Session) (string, error) {
	cred, err := e.Creds.CredentialByIdentity(ctx, sess.Identity)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredential) {
			return replyNotRegistered, nil
		}
		return "", err
	}
	sess.TenantID = cred.TenantID
	if prompt, gated := e.gate(sess, cred, CmdResetPin); gated {
		return prompt, nil
	}
	sess.ClearFlow()
	sess.State = StateAwaitPinSetup
	return replyPinSetupPrompt, nil
}

func (e *Engine) startPostJob(ctx context.Context, sess *session.Session) (string, error) {
	cred, deny, err := e.requireManager(ctx, sess)
	if err != nil || deny != "" {
		return deny, err
	}
	sess.ClearFlow()
	sess.TenantID = cred.TenantID
	sess.State = StateAwaitJobTitle
	return "*Post a Job*\n\nWhat's the job title?", nil
}

func (e *Engine) startCandidates(ctx context.Context, sess *session.Session) (string, error) {
	cred, deny, err := e.requireManager(ctx, sess)
	if err != nil || deny != "" {
		return deny, err
	}
	jobs, err := e.Jobs.ListOpenJobs(ctx, cred.TenantID)
	if err != nil {
		return "", err
	}
	if len(jobs) == 0 {
		return "No open jobs yet. Say POST JOB to create one.", nil
	}

	counts := make([]int, len(jobs))
	sess.ClearFlow()
	sess.TenantID = cred.TenantID
	for i, job := range jobs {
		cands, err := e.Jobs.CandidatesForJob(ctx, cred.TenantID, job.ID)
		if err != nil {
			return "", err
		}
		counts[i] = len(cands)
		sess.Selection = append(sess.Selection, job.ID)
	}
	sess.State = StateAwaitJobSelection
	sess.Set(keySelectionKind, selectJob)
	return openJobsReply(jobs, counts), nil
}

func (e *Engine) startApply(ctx context.Context, sess *session.Session, code string) (string, error) {
	if code == "" {
		return "Which job? Text APPLY followed by the job code, e.g. APPLY SAW-A3F2", nil
	}
	job, err := e.Jobs.JobByCode(ctx, code)
	if err != nil {
		if errors.Is(err, hiring.ErrJobNotFound) {
			return fmt.Sprintf("Couldn't find job code *%s*. Double-check and try again.", strings.ToUpper(code)), nil
		}
		return "", err
	}
	if job.Status != hiring.JobOpen {
		return "This position is no longer accepting applications.", nil
	}

	sess.ClearFlow()
	sess.State = StateAwaitApplicantName
	sess.Set(keyJobCode, job.Code)
	sess.Set(keyJobID, job.ID)
	sess.Set(keyJobTitle, job.Title)
	return fmt.Sprintf("*Apply for: %s*\n\nWhat's your full name?", job.Title), nil
}

func (e *Engine) question(ctx context.Context, text string) string {
	answerCtx, cancel := context.WithTimeout(ctx, e.AITimeout)
	defer cancel()

	answer, err := e.AI.Answer(answerCtx, text)
	if err != nil {
		e.Metrics.RecordAIFallback()
		return "Sorry, I couldn't look that up right now. Try a specific command like HELP."
	}
	return "*HR Info*\n\n" + answer
}

// payslipForEmployee prefers the employee's stored payslip from the latest
// payroll run, which carries a PDF download link; with no run on record it
// computes a current-month payslip on the fly.
func (e *Engine) payslipForEmployee(ctx context.Context, emp *company.Employee) (string, error) {
	rec, err := e.Runs.LatestForEmployee(ctx, emp.TenantID, emp.ID)
	if err == nil {
		return payroll.FormatPayslip(rec) + e.downloadLink(rec), nil
	}
	if !errors.Is(err, payroll.ErrPayslipNotFound) {
		return "", err
	}

	days := daysInMonth(e.now())
	slip, err := payroll.Compute(emp.Salary, days, days, e.Statutory)
	if err != nil {
		// Statutory configuration defect, not user error.
		return fmt.Sprintf("Payroll configuration error: %v. Contact support.", err), nil
	}
	return payroll.FormatPayslip(payroll.Record{
		TenantID:     emp.TenantID,
		EmployeeID:   emp.ID,
		EmployeeCode: emp.Code,
		EmployeeName: emp.Name,
		Period:       e.now().Format("2006-01"),
		Slip:         slip,
	}), nil
}

func (e *Engine) downloadLink(rec payroll.Record) string {
	if e.BaseURL == "" || rec.ID == "" {
		return ""
	}
	token, err := e.Gate.IssueDownloadToken(rec.TenantID, rec.ID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n\nPDF: %s/payslips/pdf?token=%s", strings.TrimRight(e.BaseURL, "/"), token)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
