// Package server assembles the shell core: persisted state, the call
// engine, the bridge router with its websocket stream, the capability
// providers, and the HTTP surface for push deliveries and the dev
// harness.
//
// The native host process attaches to the same bridge stream as the
// embedded content; call UI commands, foreground requests, and chrome
// toggles travel outbound as envelopes, and the host reports call UI
// events back inbound.
package server
