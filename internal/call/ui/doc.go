// Package ui adapts the OS-provided incoming-call presentation facility.
//
// Two platform variants exist (CallKit-style and Telecom-style) with an
// identical shape: commands go out through a Conduit to the native
// layer, and user/OS actions come back as a closed set of events.
//
// Presentation tries the direct call first; some platform facilities
// tolerate presenting before one-time setup has run. When the direct
// call fails, the adapter performs idempotent setup and retries once
// before surfacing the failure. Resolution degrades from ending the
// specific call to ending all calls, because the facility occasionally
// loses track of a call id across process relaunches.
//
// Event kinds the engine does not act on (mute, hold, DTMF) are accepted
// and forwarded; the consumer ignores them.
package ui
