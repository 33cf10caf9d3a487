// Package storage persists the small amount of shell state that must
// survive process restarts: the dedup window of recently seen push
// messages, the last-used shell URL, the stable device identifier, and
// the current push token.
//
// State is a single JSON document under the state directory, written
// atomically (temp file + rename). Everything is loaded once at startup
// and served from memory afterwards.
package storage
