package dialog

import (
	"context"
	"log/slog"
	"time"

	"sawa/internal/domain/session"
	cryptoutil "sawa/internal/platform/crypto"
	"sawa/internal/platform/metrics"
	"sawa/internal/requestctx"
)

// Service handles one inbound message end to end: sanitize, serialize per
// identity, resolve, transition, persist. Each message is an independent
// unit of work; messages from different identities proceed in parallel.
type Service struct {
	Sessions       session.Store
	Locker         *session.Locker
	Router         *Router
	Engine         *Engine
	Metrics        *metrics.Collector
	MaxInputLength int
}

func NewService(sessions session.Store, locker *session.Locker, router *Router, engine *Engine, collector *metrics.Collector, maxInputLength int) *Service {
	return &Service{
		Sessions:       sessions,
		Locker:         locker,
		Router:         router,
		Engine:         engine,
		Metrics:        collector,
		MaxInputLength: maxInputLength,
	}
}

// HandleMessage always returns something to send back; failures map to a
// generic retry reply, never to silence.
func (s *Service) HandleMessage(ctx context.Context, phone, body string) string {
	start := time.Now()
	defer func() { s.Metrics.RecordMessage(time.Since(start)) }()

	// The raw number is reduced to its digest at the boundary; everything
	// below keys on the digest.
	normalized := normalizePhone(phone)
	identity := cryptoutil.Digest(normalized)
	ctx = requestctx.WithIdentity(ctx, identity)
	requestID := requestctx.GetRequestID(ctx)

	// Session read-modify-write for one identity is serialized; a second
	// concurrent message is rejected, not queued.
	if !s.Locker.TryAcquire(identity) {
		s.Metrics.RecordBusyRejection()
		return replyBusy
	}
	defer s.Locker.Release(identity)

	text := Sanitize(body, s.MaxInputLength)

	sess, err := s.Sessions.Get(ctx, identity)
	if err != nil {
		slog.Error("session load failed", "request_id", requestID, "error", err)
		return replyRetryLater
	}
	if sess == nil {
		sess = &session.Session{Identity: identity, State: StateIdle}
	}

	// Duplicate webhook delivery: the same input arriving after the state
	// already moved past where it was processed replays the stored reply
	// instead of re-running side effects. A text that reads as an in-range
	// pick for a list the current state is showing is fresh input, not a
	// redelivery: adjacent list states legitimately take the same number
	// twice (job 1, then candidate 1).
	if text != "" && text == sess.LastInput && sess.LastState != "" &&
		sess.State != sess.LastState && !listSelection(sess, text) {
		return sess.LastReply
	}

	prevState := sess.State
	act := s.Router.Resolve(ctx, sess.State, text)

	reply, err := s.Engine.Handle(ctx, sess, act, normalized)
	if err != nil {
		// Abort without committing the mutated session: the next message
		// sees the state as it was before this transition.
		slog.Error("transition failed", "request_id", requestID, "state", prevState, "error", err)
		return replyRetryLater
	}

	sess.LastState = prevState
	sess.LastInput = text
	sess.LastReply = reply
	// PIN digits never persist, not even in the replay record; a
	// redelivered PIN message reprocesses instead of replaying.
	if prevState == StateAwaitPinSetup || prevState == StateAwaitPinVerify {
		sess.LastInput = ""
	}
	if err := s.Sessions.Put(ctx, sess); err != nil {
		// Effects are already committed; reply anyway and let the session
		// TTL repair the stale state.
		slog.Error("session save failed", "request_id", requestID, "error", err)
	}
	return reply
}

// listSelection reports whether text is a valid pick for a numbered list
// the current state is waiting on.
func listSelection(sess *session.Session, text string) bool {
	switch sess.State {
	case StateAwaitPayslipSelection, StateAwaitJobSelection, StateAwaitCandidateSelection:
		_, ok := parseSelection(text, len(sess.Selection))
		return ok
	case StateAwaitCandidateAction:
		_, ok := parseSelection(text, 4)
		return ok
	}
	return false
}
