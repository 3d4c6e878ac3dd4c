// Package ai turns free-form chat text into a structured intent when the
// command vocabulary and active flow cannot resolve it. Classification is
// best-effort: every caller must treat a failure as "no opinion" and fall
// back to its non-AI path.
package ai

import "context"

const (
	IntentRegister       = "REGISTER"
	IntentAddEmployee    = "ADD_EMPLOYEE"
	IntentPayroll        = "PAYROLL"
	IntentPayslip        = "PAYSLIP"
	IntentLeave          = "LEAVE"
	IntentList           = "LIST"
	IntentPostJob        = "POST_JOB"
	IntentViewCandidates = "VIEW_CANDIDATES"
	IntentApply          = "APPLY"
	IntentHelp           = "HELP"
	IntentHRQuestion     = "HR_QUESTION"
	IntentUnknown        = "UNKNOWN"
)

type Result struct {
	Intent        string            `json:"intent"`
	Entities      map[string]string `json:"entities"`
	Clarification string            `json:"clarification"`
}

type Classifier interface {
	// Classify maps a message to an intent. An error means the classifier
	// has no opinion, not that the message is invalid.
	Classify(ctx context.Context, message string) (Result, error)

	// Answer responds to a general HR question in plain text.
	Answer(ctx context.Context, question string) (string, error)
}

// Noop is the classifier used when no API key is configured. It always
// reports UNKNOWN, which routes the message to the unrecognized reply.
type Noop struct{}

func (Noop) Classify(context.Context, string) (Result, error) {
	return Result{Intent: IntentUnknown}, nil
}

func (Noop) Answer(context.Context, string) (string, error) {
	return "AI features are not configured. Try a command like HELP.", nil
}
