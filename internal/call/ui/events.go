package ui

// EventKind identifies a native call UI event
type EventKind string

const (
	EventAnswered EventKind = "answered"
	EventEnded    EventKind = "ended"
	EventMuted    EventKind = "muted"
	EventHeld     EventKind = "held"
	EventDTMF     EventKind = "dtmf"
)

// Event is a user or OS action reported by the native call facility
type Event struct {
	Kind   EventKind
	CallID string
}

// ResolveReason explains why a presented call is being ended
type ResolveReason string

const (
	ResolveAnswered   ResolveReason = "answered"
	ResolveTimeout    ResolveReason = "timeout"
	ResolveRemoteEnd  ResolveReason = "remote_end"
	ResolveSuperseded ResolveReason = "superseded"
)
