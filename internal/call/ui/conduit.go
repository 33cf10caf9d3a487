package ui

import (
	"context"

	"github.com/voxshell/backend/internal/infrastructure/resilience"
)

// Command is a single instruction to the native call facility
type Command struct {
	Op      string
	CallID  string
	Payload map[string]interface{}
}

// Conduit carries commands to the native layer
type Conduit interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// ConduitFunc adapts a function to the Conduit interface
type ConduitFunc func(ctx context.Context, cmd Command) error

func (f ConduitFunc) Dispatch(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// guardedConduit wraps a Conduit with a circuit breaker so a wedged
// facility fails fast instead of paying setup-and-retry on every call.
type guardedConduit struct {
	inner   Conduit
	breaker *resilience.Breaker
}

// Guard wraps a conduit with a circuit breaker.
func Guard(inner Conduit, breaker *resilience.Breaker) Conduit {
	return &guardedConduit{inner: inner, breaker: breaker}
}

func (g *guardedConduit) Dispatch(ctx context.Context, cmd Command) error {
	return g.breaker.Execute(func() error {
		return g.inner.Dispatch(ctx, cmd)
	})
}
