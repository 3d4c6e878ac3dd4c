package dialog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sawa/internal/ai"
	"sawa/internal/platform/metrics"
)

// Router resolves a sanitized message to an Action. Resolution order: exact
// vocabulary match, then active-flow input, then the AI classifier, then
// UNRECOGNIZED. Exact commands resolve identically whether or not the AI
// collaborator is reachable.
type Router struct {
	AI        ai.Classifier
	AITimeout time.Duration
	Metrics   *metrics.Collector
}

func NewRouter(classifier ai.Classifier, timeout time.Duration, collector *metrics.Collector) *Router {
	return &Router{AI: classifier, AITimeout: timeout, Metrics: collector}
}

var intentCommands = map[string]string{
	ai.IntentRegister:       CmdRegister,
	ai.IntentAddEmployee:    CmdAddEmployee,
	ai.IntentPayroll:        CmdPayroll,
	ai.IntentPayslip:        CmdPayslip,
	ai.IntentLeave:          CmdLeave,
	ai.IntentList:           CmdList,
	ai.IntentPostJob:        CmdPostJob,
	ai.IntentViewCandidates: CmdCandidates,
	ai.IntentHelp:           CmdHelp,
}

func (r *Router) Resolve(ctx context.Context, state, text string) Action {
	if act, ok := exactCommand(text); ok {
		return act
	}

	// Free text during an active flow is always field input for the state
	// the flow is waiting in; the classifier never sees it.
	if state != StateIdle {
		return Action{Kind: KindInput, Text: text}
	}

	if act, ok := r.classify(ctx, text); ok {
		return act
	}
	return Action{Kind: KindUnrecognized, Text: text}
}

// exactCommand matches the finite vocabulary, case- and space-normalized.
func exactCommand(text string) (Action, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(text), " "))

	switch normalized {
	case "HELP", "MENU", "START":
		return Action{Kind: KindCommand, Command: CmdHelp, Text: text}, true
	case "CANCEL":
		return Action{Kind: KindCommand, Command: CmdCancel, Text: text}, true
	case "REGISTER", "ADD EMPLOYEE", "PAYROLL", "PAYSLIP", "LEAVE", "LIST", "POST JOB", "CANDIDATES", "RESET PIN":
		return Action{Kind: KindCommand, Command: normalized, Text: text}, true
	}

	if code, ok := strings.CutPrefix(normalized, "APPLY "); ok && strings.TrimSpace(code) != "" {
		return Action{
			Kind:     KindCommand,
			Command:  CmdApply,
			Text:     text,
			Entities: map[string]string{"job_code": strings.TrimSpace(code)},
		}, true
	}
	return Action{}, false
}

// classify consults the AI collaborator. Any failure is swallowed: the
// caller falls through to UNRECOGNIZED, never to a user-visible error.
func (r *Router) classify(ctx context.Context, text string) (Action, bool) {
	classifyCtx, cancel := context.WithTimeout(ctx, r.AITimeout)
	defer cancel()

	result, err := r.AI.Classify(classifyCtx, text)
	if err != nil {
		slog.Debug("intent classification failed", "error", err)
		r.Metrics.RecordAIFallback()
		return Action{}, false
	}

	if result.Intent == ai.IntentHRQuestion {
		return Action{Kind: KindQuestion, Text: text}, true
	}
	if result.Intent == ai.IntentApply && result.Entities["job_code"] != "" {
		return Action{Kind: KindCommand, Command: CmdApply, Text: text, Entities: result.Entities}, true
	}
	if cmd, ok := intentCommands[result.Intent]; ok {
		return Action{Kind: KindCommand, Command: cmd, Text: text, Entities: result.Entities}, true
	}
	return Action{}, false
}
