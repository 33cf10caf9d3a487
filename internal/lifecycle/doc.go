// Package lifecycle tracks the host application's foreground state.
//
// The host shell reports transitions (active, background) as the OS
// delivers them; a freshly launched process starts in the relaunched
// state, so the first activation is recognizable as a cold start. Cold
// starts matter to the call engine: event delivery for the push that
// woke the process is unreliable, so reconciliation is more eager.
package lifecycle
