package dialog

// Kind classifies what the router made of an inbound message.
type Kind int

const (
	// KindCommand is a resolved vocabulary command (possibly via AI).
	KindCommand Kind = iota
	// KindInput is free text feeding the state a flow is waiting in.
	KindInput
	// KindQuestion is a general HR question answered by the AI collaborator.
	KindQuestion
	// KindUnrecognized could not be resolved at all.
	KindUnrecognized
)

// Commands in the exact-match vocabulary.
const (
	CmdHelp        = "HELP"
	CmdCancel      = "CANCEL"
	CmdRegister    = "REGISTER"
	CmdAddEmployee = "ADD EMPLOYEE"
	CmdPayroll     = "PAYROLL"
	CmdPayslip     = "PAYSLIP"
	CmdLeave       = "LEAVE"
	CmdList        = "LIST"
	CmdPostJob     = "POST JOB"
	CmdCandidates  = "CANDIDATES"
	CmdApply       = "APPLY"
	CmdResetPin    = "RESET PIN"
)

// Action is the router's verdict on one message.
type Action struct {
	Kind    Kind
	Command string // set for KindCommand
	Text    string // sanitized message text

	// Entities extracted by the AI collaborator, e.g. name/position for
	// ADD_EMPLOYEE or job_code for APPLY. Best-effort prefill only.
	Entities map[string]string
}
