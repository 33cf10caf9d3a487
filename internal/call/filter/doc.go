// Package filter decides whether an inbound call signal is worth acting
// on. A signal is rejected when its message identifier was already seen
// in the bounded dedup window, when its claimed send time is missing, or
// when it is older than the staleness threshold.
//
// Admission and dedup registration happen atomically under one lock, so
// the same call pushed via redundant delivery channels can only be
// admitted once. The dedup window survives process restarts through the
// storage layer.
package filter
