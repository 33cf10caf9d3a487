package ui

import (
	"time"

	"github.com/voxshell/backend/internal/infrastructure/logging"
)

// TelecomAdapter drives the Telecom/ConnectionService-style facility.
// Setup registers the phone account; presentation adds an incoming call
// with a ring duration hint, since this facility expires unanswered
// calls natively.
type TelecomAdapter struct {
	*adapter
}

// NewTelecom creates the Telecom-style adapter.
func NewTelecom(conduit Conduit, appName string, ringDuration time.Duration, logger *logging.Logger) *TelecomAdapter {
	a := newAdapter("telecom", conduit, opSet{
		setup:   "telecom.register_phone_account",
		present: "telecom.add_incoming_call",
		end:     "telecom.disconnect",
		endAll:  "telecom.disconnect_all",
	}, logger)

	a.setupPayload = map[string]interface{}{
		"account_label":   appName,
		"self_managed":    true,
		"supports_video":  true,
		"missed_call_log": false,
	}
	a.presentPayload = func(callerName string, hasVideo bool) map[string]interface{} {
		return map[string]interface{}{
			"caller_name":      callerName,
			"has_video":        hasVideo,
			"ring_duration_ms": ringDuration.Milliseconds(),
		}
	}

	return &TelecomAdapter{adapter: a}
}
