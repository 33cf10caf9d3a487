// Package controller drives the incoming-call lifecycle state machine.
//
// All session mutations happen on a single actor goroutine fed by a
// mailbox: the three push entry points, native call UI events, ring and
// resolve timers, and app lifecycle transitions are serialized there.
// That single-writer discipline is what makes the admit-and-register
// step atomic and keeps the at-most-one-live-session invariant under
// concurrent redundant deliveries.
//
// State graph:
//
//	Idle -> Ringing -> Answered -> Ending -> Terminal
//	         \__________________________________/
//	          timeout / remote end / reconciliation
//
// Answering intentionally means "open the app": the controller requests
// foreground promotion, waits a short platform-tuned delay, then
// resolves the presented call. There is no in-call UI.
package controller
