// Package bridge implements the typed message protocol between the
// native shell and the embedded web content.
//
// Messages are JSON envelopes of the form {"type": string, ...fields}
// carried over a string-based transport (websocket in this repo). The
// protocol is asynchronous and fire-and-forget: there is no request id
// and no acknowledgement channel, so handlers and the content side are
// written to be retry-safe.
//
// The Router owns dispatch: inbound envelopes go to the handler
// registered for their type, unknown types are logged and dropped, and
// outbound envelopes are broadcast to every attached transport on a
// best-effort basis.
package bridge
