package controller

import (
	"time"

	"github.com/voxshell/backend/internal/shared/id"
	"github.com/voxshell/backend/internal/shared/types"
)

// Session is the single authoritative in-flight call. It is owned by
// the controller's actor goroutine; nothing else may touch it.
type Session struct {
	ID         id.SessionID
	CallID     string
	CallerName string
	HasVideo   bool
	State      types.CallState
	Origin     types.SignalOrigin
	CreatedAt  time.Time

	ringingSince time.Time
	ringTimer    *time.Timer
	resolveTimer *time.Timer
}

// SessionInfo is a copy-safe view of a session
type SessionInfo struct {
	ID         id.SessionID       `json:"session_id"`
	CallID     string             `json:"call_id"`
	CallerName string             `json:"caller_name"`
	HasVideo   bool               `json:"has_video"`
	State      types.CallState    `json:"state"`
	Origin     types.SignalOrigin `json:"origin"`
	CreatedAt  time.Time          `json:"created_at"`
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:         s.ID,
		CallID:     s.CallID,
		CallerName: s.CallerName,
		HasVideo:   s.HasVideo,
		State:      s.State,
		Origin:     s.Origin,
		CreatedAt:  s.CreatedAt,
	}
}

// stopTimers releases the session's pending timers.
func (s *Session) stopTimers() {
	if s.ringTimer != nil {
		s.ringTimer.Stop()
		s.ringTimer = nil
	}
	if s.resolveTimer != nil {
		s.resolveTimer.Stop()
		s.resolveTimer = nil
	}
}

// Registry owns the single live call session. Accessed only from the
// controller's actor goroutine, so it needs no locking of its own.
type Registry struct {
	current *Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Live returns the current non-terminal session, nil when idle.
func (r *Registry) Live() *Session {
	if r.current != nil && r.current.State.Terminal() {
		r.current = nil
	}
	return r.current
}

// Claim installs a new session. The caller must have released or
// terminated any live session first.
func (r *Registry) Claim(s *Session) {
	r.current = s
}

// Release drops the session after it reached Terminal.
func (r *Registry) Release() {
	r.current = nil
}
