// Package monitoring provides Prometheus metrics for the VoxShell backend.
//
// Metrics cover the call engine (signals by origin and decision, sessions
// by outcome, adapter failures), the bridge (messages by type and
// direction, connection gauge), and the HTTP surface.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	metrics.RecordSignal("foreground", "admitted")
package monitoring
