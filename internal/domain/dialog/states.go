package dialog

// Dialogue states. StateIdle is both the initial state and the terminal
// state of every completed or cancelled flow.
const (
	StateIdle = "IDLE"

	// Company registration.
	StateAwaitCompanyName  = "AWAIT_COMPANY_NAME"
	StateAwaitCompanyEmail = "AWAIT_COMPANY_EMAIL"
	StateAwaitPinSetup     = "AWAIT_PIN_SETUP"

	// Employee onboarding. The salary state walks the four components
	// (basic, housing, transport, other) via the partial-input record.
	StateAwaitEmployeeName     = "AWAIT_EMPLOYEE_NAME"
	StateAwaitEmployeePhone    = "AWAIT_EMPLOYEE_PHONE"
	StateAwaitEmployeePosition = "AWAIT_EMPLOYEE_POSITION"
	StateAwaitEmployeeSalary   = "AWAIT_EMPLOYEE_SALARY"

	// PIN gate, parameterized by the action it resumes.
	StateAwaitPinVerify = "AWAIT_PIN_VERIFY"

	// Payroll.
	StateConfirmPayrollRun     = "CONFIRM_PAYROLL_RUN"
	StateAwaitPayslipSelection = "AWAIT_PAYSLIP_SELECTION"

	// Hiring: job posting.
	StateAwaitJobTitle        = "AWAIT_JOB_TITLE"
	StateAwaitJobDescription  = "AWAIT_JOB_DESCRIPTION"
	StateAwaitJobRequirements = "AWAIT_JOB_REQUIREMENTS"
	StateAwaitJobLocation     = "AWAIT_JOB_LOCATION"
	StateAwaitJobSalary       = "AWAIT_JOB_SALARY"
	StateConfirmJobPost       = "CONFIRM_JOB_POST"

	// Hiring: applications and candidate review.
	StateAwaitApplicantName       = "AWAIT_APPLICANT_NAME"
	StateAwaitApplicantExperience = "AWAIT_APPLICANT_EXPERIENCE"
	StateAwaitJobSelection        = "AWAIT_JOB_SELECTION"
	StateAwaitCandidateSelection  = "AWAIT_CANDIDATE_SELECTION"
	StateAwaitCandidateAction     = "AWAIT_CANDIDATE_ACTION"
)

// Partial-input keys used by the flows above.
const (
	keyCompanyName  = "company_name"
	keyCompanyEmail = "company_email"

	keyEmployeeName     = "employee_name"
	keyEmployeePhone    = "employee_phone"
	keyEmployeePosition = "employee_position"
	keySalaryStep       = "salary_step"
	keySalaryBasic      = "salary_basic"
	keySalaryHousing    = "salary_housing"
	keySalaryTransport  = "salary_transport"

	keyResumeCommand = "resume_command"
	keySelectionKind = "selection_kind"

	keyJobTitle        = "job_title"
	keyJobDescription  = "job_description"
	keyJobRequirements = "job_requirements"
	keyJobLocation     = "job_location"
	keyJobSalary       = "job_salary"
	keyJobCode         = "job_code"
	keyJobID           = "job_id"
	keyApplicantName   = "applicant_name"
	keyCandidateID     = "candidate_id"
	keyCandidateName   = "candidate_name"
)

// Salary component steps, in walk order.
const (
	stepBasic     = "basic"
	stepHousing   = "housing"
	stepTransport = "transport"
	stepOther     = "other"
)

// Selection kinds for the numeric-selection sub-protocol.
const (
	selectPayslip   = "payslip"
	selectEmployee  = "employee"
	selectJob       = "job"
	selectCandidate = "candidate"
)
