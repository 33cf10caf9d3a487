// Package types provides shared data structures for the VoxShell backend.
//
// This package defines core types used across backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - PushSignal: Inbound call-intent message from platform push delivery
//   - DedupRecord: Seen-message record for the freshness filter
//   - Service: Capability provider definition
//   - Tool: Provider tool specification
//   - Context: Execution context for provider operations
//   - Result: Standard operation result
//
// Call Types:
//   - SignalOrigin: Delivery channel enum (foreground, background, wake)
//   - CallState: Session state enum (ringing, answered, ending, terminal)
//
// Example Usage:
//
//	sig := types.PushSignal{
//	    CallID:     string(id.NewCallID()),
//	    CallerName: "Alice",
//	    SentAt:     time.Now(),
//	    Origin:     types.OriginForeground,
//	}
package types
