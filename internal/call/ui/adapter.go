package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/infrastructure/logging"
)

var (
	// ErrPresentation means the call UI could not be shown even after
	// setup and retry.
	ErrPresentation = errors.New("call UI presentation failed")

	// ErrResolution means neither the specific call nor the end-all
	// fallback could be resolved on the platform side.
	ErrResolution = errors.New("call UI resolution failed")
)

// Adapter is the native call UI facility seen by the call engine
type Adapter interface {
	// Present shows the incoming-call UI for the given call.
	Present(ctx context.Context, callID, callerName string, hasVideo bool) error

	// Resolve ends the presentation for the given call.
	Resolve(ctx context.Context, callID string, reason ResolveReason) error

	// Events delivers user/OS actions on presented calls.
	Events() <-chan Event
}

const eventBuffer = 16

// opSet names the platform commands for one facility variant
type opSet struct {
	setup   string
	present string
	end     string
	endAll  string
}

// adapter implements the shared present/resolve algorithm over a Conduit.
// Platform variants differ only in their op names and payload shapes.
type adapter struct {
	name    string
	conduit Conduit
	ops     opSet
	logger  *logging.Logger

	// present payload hook, variant-specific
	presentPayload func(callerName string, hasVideo bool) map[string]interface{}
	setupPayload   map[string]interface{}

	mu         sync.Mutex
	configured bool

	events chan Event
}

func newAdapter(name string, conduit Conduit, ops opSet, logger *logging.Logger) *adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &adapter{
		name:    name,
		conduit: conduit,
		ops:     ops,
		logger:  logger.Named(name),
		events:  make(chan Event, eventBuffer),
	}
}

// Present tries the direct presentation call first; the facility may
// tolerate late setup. On failure it runs setup and retries once.
func (a *adapter) Present(ctx context.Context, callID, callerName string, hasVideo bool) error {
	cmd := Command{
		Op:      a.ops.present,
		CallID:  callID,
		Payload: a.presentPayload(callerName, hasVideo),
	}

	err := a.conduit.Dispatch(ctx, cmd)
	if err == nil {
		return nil
	}
	a.logger.Debug("direct present failed, running setup",
		zap.String("call_id", callID),
		zap.Error(err),
	)

	if err := a.ensureSetup(ctx); err != nil {
		return fmt.Errorf("%w: setup: %v", ErrPresentation, err)
	}

	if err := a.conduit.Dispatch(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrPresentation, err)
	}
	return nil
}

// Resolve ends the specific call, falling back to ending every call the
// facility knows about when the id has been lost platform-side.
func (a *adapter) Resolve(ctx context.Context, callID string, reason ResolveReason) error {
	err := a.conduit.Dispatch(ctx, Command{
		Op:      a.ops.end,
		CallID:  callID,
		Payload: map[string]interface{}{"reason": string(reason)},
	})
	if err == nil {
		return nil
	}

	a.logger.Warn("specific-call end failed, ending all calls",
		zap.String("call_id", callID),
		zap.Error(err),
	)

	if err := a.conduit.Dispatch(ctx, Command{Op: a.ops.endAll}); err != nil {
		return fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return nil
}

// Events returns the adapter's event stream.
func (a *adapter) Events() <-chan Event {
	return a.events
}

// HandleEvent is called by the platform glue when the native facility
// reports an action. Delivery is best-effort: the call engine reconciles
// on foreground transitions, so a dropped event is recoverable.
func (a *adapter) HandleEvent(ev Event) {
	select {
	case a.events <- ev:
	default:
		a.logger.Warn("event buffer full, dropping",
			zap.String("kind", string(ev.Kind)),
			zap.String("call_id", ev.CallID),
		)
	}
}

// ensureSetup runs the facility's one-time setup. Idempotent: the
// configured flag is scoped to the adapter instance and only set once
// setup has succeeded, so a failed setup remains retryable.
func (a *adapter) ensureSetup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.configured {
		return nil
	}

	if err := a.conduit.Dispatch(ctx, Command{Op: a.ops.setup, Payload: a.setupPayload}); err != nil {
		return err
	}
	a.configured = true
	return nil
}
