package session

import "time"

// Session is the single in-flight dialogue for one identity: the current
// state, the partial input gathered so far, and the PIN-token reference.
// Partial input lives only here until the final field of a flow validates;
// nothing is committed to persistence mid-flow.
type Session struct {
	Identity  string            `json:"identity"`
	TenantID  string            `json:"tenantId"`
	State     string            `json:"state"`
	Data      map[string]string `json:"data"`
	Selection []string          `json:"selection"`
	PinToken  string            `json:"pinToken"`

	// Last-processed triple for duplicate webhook deliveries: an exact
	// repeat of LastInput after the state has moved past LastState replays
	// LastReply instead of re-running effects.
	LastState string `json:"lastState"`
	LastInput string `json:"lastInput"`
	LastReply string `json:"lastReply"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Set records one partial-input field, allocating the map on first use.
func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}

func (s *Session) Get(key string) string {
	return s.Data[key]
}

// ClearFlow drops partial input and any pending selection, keeping the
// tenant binding, PIN token and duplicate-delivery record.
func (s *Session) ClearFlow() {
	s.Data = nil
	s.Selection = nil
}

func (s *Session) clone() *Session {
	out := *s
	if s.Data != nil {
		out.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	if s.Selection != nil {
		out.Selection = append([]string(nil), s.Selection...)
	}
	return &out
}
