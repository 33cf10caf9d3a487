/*
Package tracing provides lightweight request tracing for the shell core.

# Overview

One shell process handles three racing push channels, a websocket bridge,
and a host dev harness; tracing ties the log lines of one delivery
together. It follows OpenTelemetry concepts with a minimal implementation
and no external collector.

# Features

- Trace context propagation via X-Trace-ID / X-Span-ID headers
- Span creation with parent-child relationships
- Gin middleware for automatic instrumentation
- Structured logging integration
- Buffered span collection

# Usage

	tracer := tracing.New("shell", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
