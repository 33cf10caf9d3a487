package ui

import "github.com/voxshell/backend/internal/infrastructure/logging"

// CallKitAdapter drives the CallKit-style facility. Setup registers the
// provider configuration once; presentation reports an incoming call
// with a generic handle. The facility has no native ring expiry, so the
// call engine's own ring timer is what ends unanswered calls.
type CallKitAdapter struct {
	*adapter
}

// NewCallKit creates the CallKit-style adapter.
func NewCallKit(conduit Conduit, appName string, logger *logging.Logger) *CallKitAdapter {
	a := newAdapter("callkit", conduit, opSet{
		setup:   "callkit.setup",
		present: "callkit.report_incoming_call",
		end:     "callkit.end_call",
		endAll:  "callkit.end_all_calls",
	}, logger)

	a.setupPayload = map[string]interface{}{
		"localized_name":          appName,
		"supports_video":          true,
		"maximum_call_groups":     1,
		"maximum_calls_per_group": 1,
		"include_in_recents":      false,
		"ringtone_sound":          "default",
	}
	a.presentPayload = func(callerName string, hasVideo bool) map[string]interface{} {
		return map[string]interface{}{
			"handle":      callerName,
			"handle_type": "generic",
			"has_video":   hasVideo,
		}
	}

	return &CallKitAdapter{adapter: a}
}
