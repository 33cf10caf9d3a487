// Package ws carries the bridge protocol over websocket connections.
//
// Each connected embedded-content surface gets one connection. Inbound
// frames are handed to the bridge router; the connection registers
// itself as an outbound transport for the router's broadcasts.
package ws
