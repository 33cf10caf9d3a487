package types

import "time"

// SignalOrigin identifies which delivery channel produced a push signal
type SignalOrigin string

const (
	OriginForeground SignalOrigin = "foreground" // live event stream
	OriginBackground SignalOrigin = "background" // backgrounded-process data callback
	OriginWake       SignalOrigin = "wake"       // killed-process wake task
)

// PushSignal is an inbound call-intent message. It is immutable and
// consumed exactly once by the freshness filter.
type PushSignal struct {
	MessageID  string       `json:"message_id,omitempty"`
	CallID     string       `json:"call_id"`
	CallerName string       `json:"caller_name"`
	SentAt     time.Time    `json:"sent_at"`
	HasVideo   bool         `json:"has_video"`
	Origin     SignalOrigin `json:"origin"`
}

// DedupRecord marks a message identifier as seen. Records form a bounded,
// insertion-ordered window persisted across process restarts.
type DedupRecord struct {
	MessageID string    `json:"message_id"`
	SeenAt    time.Time `json:"seen_at"`
}

// CallState represents call session lifecycle states
type CallState string

const (
	CallStateRinging  CallState = "ringing"
	CallStateAnswered CallState = "answered"
	CallStateEnding   CallState = "ending"
	CallStateTerminal CallState = "terminal"
)

// Terminal reports whether the state is final.
func (s CallState) Terminal() bool {
	return s == CallStateTerminal
}

// CallOutcome records how a session reached Terminal
type CallOutcome string

const (
	OutcomeAnswered      CallOutcome = "answered"
	OutcomeTimeout       CallOutcome = "timeout"
	OutcomeRemoteEnded   CallOutcome = "remote_ended"
	OutcomePresentFailed CallOutcome = "present_failed"
	OutcomeSuperseded    CallOutcome = "superseded"
	OutcomeReconciled    CallOutcome = "reconciled"
)
