package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sawa/internal/domain/auth"
	"sawa/internal/domain/company"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
	"sawa/internal/domain/session"
	"sawa/internal/requestctx"

	"github.com/google/uuid"
)

// input feeds free text to whatever state the session is waiting in.
// Validation failures re-prompt and leave the state unchanged; nothing is
// committed to persistence until the final field of a flow validates.
func (e *Engine) input(ctx context.Context, sess *session.Session, text, phone string) (string, error) {
	switch sess.State {

	// ── Company registration ──
	case StateAwaitCompanyName:
		if text == "" {
			return "Company name?", nil
		}
		sess.Set(keyCompanyName, text)
		sess.State = StateAwaitCompanyEmail
		return fmt.Sprintf("Great! *%s*\n\nCompany email?", text), nil

	case StateAwaitCompanyEmail:
		if !validEmail(text) {
			return replyEmailInvalid, nil
		}
		sess.Set(keyCompanyEmail, text)
		sess.State = StateAwaitPinSetup
		return replyPinSetupPrompt, nil

	case StateAwaitPinSetup:
		return e.finishPinSetup(ctx, sess, text, phone)

	// ── Employee onboarding ──
	case StateAwaitEmployeeName:
		return e.employeeName(ctx, sess, text)

	case StateAwaitEmployeePhone:
		if !validPhone(text) {
			return replyPhoneInvalid, nil
		}
		sess.Set(keyEmployeePhone, normalizePhone(text))
		if sess.Get(keyEmployeePosition) != "" {
			sess.State = StateAwaitEmployeeSalary
			sess.Set(keySalaryStep, stepBasic)
			return "BASIC SALARY (monthly)?\n\nExample: 200000", nil
		}
		sess.State = StateAwaitEmployeePosition
		return "Position/Job title?", nil

	case StateAwaitEmployeePosition:
		if text == "" {
			return "Position/Job title?", nil
		}
		sess.Set(keyEmployeePosition, text)
		sess.State = StateAwaitEmployeeSalary
		sess.Set(keySalaryStep, stepBasic)
		return "BASIC SALARY (monthly)?\n\nExample: 200000", nil

	case StateAwaitEmployeeSalary:
		return e.salaryStep(ctx, sess, text)

	// ── PIN gate ──
	case StateAwaitPinVerify:
		return e.pinVerify(ctx, sess, text, phone)

	// ── Payroll ──
	case StateConfirmPayrollRun:
		switch {
		case isNo(text):
			e.reset(sess)
			return replyCancelled, nil
		case isYes(text):
			return e.runPayroll(ctx, sess)
		default:
			return "Reply YES to run payroll or CANCEL to stop.", nil
		}

	case StateAwaitPayslipSelection:
		return e.payslipSelection(ctx, sess, text)

	// ── Hiring: job posting ──
	case StateAwaitJobTitle:
		if text == "" {
			return "What's the job title?", nil
		}
		sess.Set(keyJobTitle, text)
		sess.State = StateAwaitJobDescription
		return fmt.Sprintf("*%s* - nice!\n\nGive a brief description of the role:", text), nil

	case StateAwaitJobDescription:
		sess.Set(keyJobDescription, text)
		sess.State = StateAwaitJobRequirements
		return "What are the requirements? (e.g. 3 years experience, BSc)", nil

	case StateAwaitJobRequirements:
		sess.Set(keyJobRequirements, text)
		sess.State = StateAwaitJobLocation
		return "Where is the role based? (e.g. Lagos, Remote, Hybrid)", nil

	case StateAwaitJobLocation:
		sess.Set(keyJobLocation, text)
		sess.State = StateAwaitJobSalary
		return "Any salary range to show? (e.g. 300k-500k, or say skip to leave it out)", nil

	case StateAwaitJobSalary:
		if !isSkip(text) {
			sess.Set(keyJobSalary, text)
		}
		sess.State = StateConfirmJobPost
		return jobConfirmReply(sess.Get(keyJobTitle), sess.Get(keyJobDescription),
			sess.Get(keyJobRequirements), sess.Get(keyJobLocation), sess.Get(keyJobSalary)), nil

	case StateConfirmJobPost:
		switch {
		case isNo(text):
			e.reset(sess)
			return "No worries, job posting discarded.", nil
		case isYes(text):
			return e.postJob(ctx, sess)
		default:
			return "Just say *yes* to post the job, or *cancel* to discard.", nil
		}

	// ── Hiring: applications ──
	case StateAwaitApplicantName:
		if text == "" {
			return "What's your full name?", nil
		}
		sess.Set(keyApplicantName, text)
		sess.State = StateAwaitApplicantExperience
		return fmt.Sprintf("Nice to meet you, *%s*!\n\nTell us briefly about your experience:", text), nil

	case StateAwaitApplicantExperience:
		return e.submitApplication(ctx, sess, text, phone)

	// ── Hiring: candidate review ──
	case StateAwaitJobSelection:
		return e.jobSelection(ctx, sess, text)

	case StateAwaitCandidateSelection:
		return e.candidateSelection(ctx, sess, text)

	case StateAwaitCandidateAction:
		return e.candidateAction(ctx, sess, text)
	}

	// IDLE or an unknown state: nothing is awaited, show the menu.
	e.reset(sess)
	return menuText, nil
}

// finishPinSetup closes both flows that end in a PIN: company registration
// (partial input carries the company fields) and a standalone PIN reset.
func (e *Engine) finishPinSetup(ctx context.Context, sess *session.Session, text, phone string) (string, error) {
	if !validPIN(text) {
		return replyPinInvalid, nil
	}
	hash, err := auth.HashPIN(text)
	if err != nil {
		return "", err
	}

	name := sess.Get(keyCompanyName)
	if name == "" {
		// Standalone reset for an existing credential.
		if err := e.Creds.SetPIN(ctx, sess.Identity, hash); err != nil {
			return "", err
		}
		e.Audit.Record(sess.TenantID, sess.Identity, "RESET_PIN", "ok", requestctx.GetRequestID(ctx), nil)
		e.reset(sess)
		return "PIN set! You can now use protected commands.", nil
	}

	email := sess.Get(keyCompanyEmail)
	if email == "" {
		e.reset(sess)
		return "Session expired. Type REGISTER to start again.", nil
	}

	comp, err := e.Directory.CreateWithOwner(ctx, name, email, sess.Identity, phone, hash)
	if err != nil {
		if errors.Is(err, company.ErrCompanyExists) {
			e.reset(sess)
			return fmt.Sprintf("A company named *%s* is already registered. Type REGISTER to try a different name.", name), nil
		}
		return "", err
	}

	e.Audit.Record(comp.ID, sess.Identity, "REGISTER", "ok", requestctx.GetRequestID(ctx), map[string]string{"company": name})
	e.reset(sess)
	sess.TenantID = comp.ID
	return fmt.Sprintf("*Registered!*\n\nWelcome, %s!\nPIN set successfully.\n\nType:\n- ADD EMPLOYEE\n- PAYROLL\n- HELP", name), nil
}

func (e *Engine) employeeName(ctx context.Context, sess *session.Session, text string) (string, error) {
	if text == "" {
		return "Employee's full name?", nil
	}
	emps, err := e.Directory.ListEmployees(ctx, sess.TenantID)
	if err != nil {
		return "", err
	}
	for _, emp := range emps {
		if strings.EqualFold(emp.Name, text) {
			return fmt.Sprintf("An employee named *%s* already exists. Enter a different name or type CANCEL.", text), nil
		}
	}
	sess.Set(keyEmployeeName, text)
	sess.State = StateAwaitEmployeePhone
	return "Phone number?", nil
}

// salaryStep walks the four salary components inside one state, keeping the
// position in the partial-input record. The employee is created only after
// the last component validates.
func (e *Engine) salaryStep(ctx context.Context, sess *session.Session, text string) (string, error) {
	amount, err := parseAmount(text)
	if err != nil {
		return replyAmountInvalid, nil
	}
	stored := strconv.FormatInt(int64(amount), 10)

	switch sess.Get(keySalaryStep) {
	case stepHousing:
		sess.Set(keySalaryHousing, stored)
		sess.Set(keySalaryStep, stepTransport)
		return fmt.Sprintf("Housing: %s\n\nTRANSPORT allowance?\n(Enter 0 if none)", payroll.FormatNaira(amount)), nil

	case stepTransport:
		sess.Set(keySalaryTransport, stored)
		sess.Set(keySalaryStep, stepOther)
		return fmt.Sprintf("Transport: %s\n\nOTHER allowances?\n(Enter 0 if none)", payroll.FormatNaira(amount)), nil

	case stepOther:
		return e.createEmployee(ctx, sess, amount)

	default: // basic
		sess.Set(keySalaryBasic, stored)
		sess.Set(keySalaryStep, stepHousing)
		return fmt.Sprintf("Basic: %s\n\nHOUSING allowance?\n(Enter 0 if none)", payroll.FormatNaira(amount)), nil
	}
}

func (e *Engine) createEmployee(ctx context.Context, sess *session.Session, other payroll.Kobo) (string, error) {
	salary := payroll.SalaryStructure{
		Basic:     koboField(sess, keySalaryBasic),
		Housing:   koboField(sess, keySalaryHousing),
		Transport: koboField(sess, keySalaryTransport),
		Other:     other,
	}

	emp, err := e.Directory.CreateEmployee(ctx, sess.TenantID,
		sess.Get(keyEmployeeName), sess.Get(keyEmployeePosition), sess.Get(keyEmployeePhone), salary)
	if err != nil {
		if errors.Is(err, company.ErrEmployeeExists) {
			e.reset(sess)
			return "That employee already exists. Type ADD EMPLOYEE to start over.", nil
		}
		return "", err
	}

	e.Audit.Record(sess.TenantID, sess.Identity, "ADD_EMPLOYEE", "ok", requestctx.GetRequestID(ctx),
		map[string]string{"name": emp.Name, "code": emp.Code})
	e.reset(sess)
	return employeeAddedReply(emp), nil
}

func koboField(sess *session.Session, key string) payroll.Kobo {
	n, _ := strconv.ParseInt(sess.Get(key), 10, 64)
	return payroll.Kobo(n)
}

// pinVerify checks the entered PIN and, on success, resumes the command the
// gate interrupted. A mismatch re-prompts without destroying the session.
func (e *Engine) pinVerify(ctx context.Context, sess *session.Session, text, phone string) (string, error) {
	token, err := e.Gate.IssueToken(ctx, sess.Identity, text)
	if err != nil {
		if errors.Is(err, auth.ErrPINMismatch) {
			e.Audit.Record(sess.TenantID, sess.Identity, "PIN_FAILED", "denied", requestctx.GetRequestID(ctx), nil)
			return replyPinWrong, nil
		}
		return "", err
	}

	resume := sess.Get(keyResumeCommand)
	sess.PinToken = token
	e.reset(sess)
	e.Audit.Record(sess.TenantID, sess.Identity, "PIN_VERIFIED", "ok", requestctx.GetRequestID(ctx),
		map[string]string{"action": resume})
	if resume == "" {
		return "PIN verified.", nil
	}
	return e.command(ctx, sess, Action{Kind: KindCommand, Command: resume}, phone)
}

// runPayroll computes a payslip for every employee, persists the run
// atomically, and opens payslip selection on the stored records.
func (e *Engine) runPayroll(ctx context.Context, sess *session.Session) (string, error) {
	emps, err := e.Directory.ListEmployees(ctx, sess.TenantID)
	if err != nil {
		return "", err
	}
	if len(emps) == 0 {
		e.reset(sess)
		return replyNoEmployees, nil
	}

	now := e.now()
	period := now.Format("2006-01")
	days := daysInMonth(now)

	run := payroll.Run{
		ID:       uuid.NewString(),
		TenantID: sess.TenantID,
		Period:   period,
		RunBy:    sess.Identity,
	}

	records := make([]payroll.Record, 0, len(emps))
	for _, emp := range emps {
		slip, err := payroll.Compute(emp.Salary, days, days, e.Statutory)
		if err != nil {
			e.reset(sess)
			return fmt.Sprintf("Payroll configuration error: %v. Contact support.", err), nil
		}
		records = append(records, payroll.Record{
			ID:           uuid.NewString(),
			TenantID:     sess.TenantID,
			RunID:        run.ID,
			EmployeeID:   emp.ID,
			EmployeeCode: emp.Code,
			EmployeeName: emp.Name,
			Period:       period,
			Slip:         slip,
		})
		run.TotalNet += slip.Net
	}

	if err := e.Runs.CreateRun(ctx, run, records); err != nil {
		return "", err
	}

	e.Metrics.RecordPayrollRun()
	e.Audit.Record(sess.TenantID, sess.Identity, "PAYROLL_RUN", "ok", requestctx.GetRequestID(ctx),
		map[string]any{"period": period, "count": len(records)})

	sess.ClearFlow()
	sess.State = StateAwaitPayslipSelection
	sess.Set(keySelectionKind, selectPayslip)
	for _, rec := range records {
		sess.Selection = append(sess.Selection, rec.ID)
	}
	return payrollSummaryReply(records, run.TotalNet, now.Format("January 2006")), nil
}

// payslipSelection resolves a numeric reply against the stored id list. The
// state stays active so several payslips can be viewed in a row; CANCEL or
// HELP leaves it.
func (e *Engine) payslipSelection(ctx context.Context, sess *session.Session, text string) (string, error) {
	n, ok := parseSelection(text, len(sess.Selection))
	if !ok {
		return selectionRangeReply(len(sess.Selection)), nil
	}
	id := sess.Selection[n-1]

	if sess.Get(keySelectionKind) == selectEmployee {
		emp, err := e.Directory.EmployeeByID(ctx, sess.TenantID, id)
		if err != nil {
			if errors.Is(err, company.ErrEmployeeNotFound) {
				return "Employee not found. They may have been removed.", nil
			}
			return "", err
		}
		e.Audit.Record(sess.TenantID, sess.Identity, "VIEW_PAYSLIP", "ok", requestctx.GetRequestID(ctx),
			map[string]string{"employee": emp.Code})
		return e.payslipForEmployee(ctx, emp)
	}

	rec, err := e.Runs.PayslipByID(ctx, sess.TenantID, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayslipNotFound) {
			return "Payslip not found.", nil
		}
		return "", err
	}
	e.Audit.Record(sess.TenantID, sess.Identity, "VIEW_PAYSLIP", "ok", requestctx.GetRequestID(ctx),
		map[string]string{"employee": rec.EmployeeCode})
	return payroll.FormatPayslip(rec) + e.downloadLink(rec), nil
}

func (e *Engine) postJob(ctx context.Context, sess *session.Session) (string, error) {
	job, err := e.Jobs.CreateJob(ctx, &hiring.Job{
		TenantID:     sess.TenantID,
		Title:        sess.Get(keyJobTitle),
		Description:  sess.Get(keyJobDescription),
		Requirements: sess.Get(keyJobRequirements),
		Location:     sess.Get(keyJobLocation),
		SalaryRange:  sess.Get(keyJobSalary),
	})
	if err != nil {
		return "", err
	}

	e.Audit.Record(sess.TenantID, sess.Identity, "POST_JOB", "ok", requestctx.GetRequestID(ctx),
		map[string]string{"job_code": job.Code, "title": job.Title})
	e.reset(sess)
	return jobPostedReply(job), nil
}

func (e *Engine) submitApplication(ctx context.Context, sess *session.Session, text, phone string) (string, error) {
	job, err := e.Jobs.JobByCode(ctx, sess.Get(keyJobCode))
	if err != nil {
		if errors.Is(err, hiring.ErrJobNotFound) {
			e.reset(sess)
			return "This position is no longer available.", nil
		}
		return "", err
	}

	cand, err := e.Jobs.AddCandidate(ctx, job, sess.Get(keyApplicantName), phone, text)
	if err != nil {
		if errors.Is(err, hiring.ErrJobClosed) {
			e.reset(sess)
			return "This position is no longer accepting applications.", nil
		}
		return "", err
	}

	e.Audit.Record(job.TenantID, sess.Identity, "APPLY", "ok", requestctx.GetRequestID(ctx),
		map[string]string{"job_code": job.Code, "name": cand.Name})
	e.reset(sess)
	return fmt.Sprintf("Application submitted!\n\nPosition: *%s*\nName: *%s*\n\nThe employer will reach out if you're shortlisted. Good luck!",
		job.Title, cand.Name), nil
}

func (e *Engine) jobSelection(ctx context.Context, sess *session.Session, text string) (string, error) {
	n, ok := parseSelection(text, len(sess.Selection))
	if !ok {
		return selectionRangeReply(len(sess.Selection)), nil
	}
	jobID := sess.Selection[n-1]

	jobs, err := e.Jobs.ListOpenJobs(ctx, sess.TenantID)
	if err != nil {
		return "", err
	}
	title := ""
	for _, job := range jobs {
		if job.ID == jobID {
			title = job.Title
			break
		}
	}

	cands, err := e.Jobs.CandidatesForJob(ctx, sess.TenantID, jobID)
	if err != nil {
		return "", err
	}
	if len(cands) == 0 {
		e.reset(sess)
		return fmt.Sprintf("No candidates yet for *%s*. They'll show up here once people apply.", title), nil
	}

	sess.Selection = nil
	for _, cand := range cands {
		sess.Selection = append(sess.Selection, cand.ID)
	}
	sess.State = StateAwaitCandidateSelection
	sess.Set(keySelectionKind, selectCandidate)
	sess.Set(keyJobID, jobID)
	sess.Set(keyJobTitle, title)
	return candidateListReply(title, cands), nil
}

func (e *Engine) candidateSelection(ctx context.Context, sess *session.Session, text string) (string, error) {
	n, ok := parseSelection(text, len(sess.Selection))
	if !ok {
		return selectionRangeReply(len(sess.Selection)), nil
	}
	candID := sess.Selection[n-1]

	cands, err := e.Jobs.CandidatesForJob(ctx, sess.TenantID, sess.Get(keyJobID))
	if err != nil {
		return "", err
	}
	for _, cand := range cands {
		if cand.ID == candID {
			sess.Set(keyCandidateID, cand.ID)
			sess.Set(keyCandidateName, cand.Name)
			sess.State = StateAwaitCandidateAction
			sess.Selection = nil
			return candidateActionReply(cand.Name, cand.Stage), nil
		}
	}
	e.reset(sess)
	return "Couldn't find that candidate. They may have been removed.", nil
}

func (e *Engine) candidateAction(ctx context.Context, sess *session.Session, text string) (string, error) {
	candID := sess.Get(keyCandidateID)
	name := sess.Get(keyCandidateName)
	requestID := requestctx.GetRequestID(ctx)

	switch strings.TrimSpace(text) {
	case "1":
		cand, err := e.Jobs.AdvanceCandidate(ctx, sess.TenantID, candID)
		if err != nil {
			if errors.Is(err, hiring.ErrFinalStage) {
				e.reset(sess)
				return fmt.Sprintf("*%s* is already at the final stage.", name), nil
			}
			if errors.Is(err, hiring.ErrCandidateNotFound) {
				e.reset(sess)
				return "Couldn't find that candidate. They may have been removed.", nil
			}
			return "", err
		}
		e.Audit.Record(sess.TenantID, sess.Identity, "ADVANCE_CANDIDATE", "ok", requestID,
			map[string]string{"name": cand.Name, "stage": cand.Stage})
		reply := fmt.Sprintf("*%s* moved to *%s*", cand.Name, strings.ToUpper(cand.Stage))
		// Hiring someone fills the position, so stop accepting applications.
		if cand.Stage == hiring.StageHired {
			if err := e.Jobs.CloseJob(ctx, sess.TenantID, sess.Get(keyJobID)); err != nil {
				return "", err
			}
			reply += fmt.Sprintf("\n\nThe *%s* posting is now closed.", sess.Get(keyJobTitle))
		}
		e.reset(sess)
		return reply, nil

	case "2":
		cand, err := e.Jobs.RejectCandidate(ctx, sess.TenantID, candID)
		if err != nil {
			if errors.Is(err, hiring.ErrCandidateNotFound) {
				e.reset(sess)
				return "Couldn't find that candidate. They may have been removed.", nil
			}
			return "", err
		}
		e.Audit.Record(sess.TenantID, sess.Identity, "REJECT_CANDIDATE", "ok", requestID,
			map[string]string{"name": cand.Name})
		e.reset(sess)
		return fmt.Sprintf("*%s* has been rejected.", cand.Name), nil

	case "3":
		cand, err := e.Jobs.MarkStage(ctx, sess.TenantID, candID, hiring.StageOffer)
		if err != nil {
			if errors.Is(err, hiring.ErrCandidateNotFound) {
				e.reset(sess)
				return "Couldn't find that candidate. They may have been removed.", nil
			}
			return "", err
		}
		e.Audit.Record(sess.TenantID, sess.Identity, "SEND_OFFER", "ok", requestID,
			map[string]string{"name": cand.Name})
		e.reset(sess)
		return fmt.Sprintf("Offer sent to *%s*! They'll be notified to respond.", cand.Name), nil

	case "4":
		e.reset(sess)
		return menuText, nil
	}
	return "Pick a number from 1-4, or type CANCEL.", nil
}
