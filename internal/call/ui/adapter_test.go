package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxshell/backend/internal/infrastructure/resilience"
)

// scriptedConduit fails ops until their budget runs out, recording every
// dispatched command.
type scriptedConduit struct {
	mu       sync.Mutex
	failures map[string]int // op -> remaining failures
	commands []Command
}

func newScriptedConduit() *scriptedConduit {
	return &scriptedConduit{failures: make(map[string]int)}
}

func (c *scriptedConduit) failNext(op string, times int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[op] = times
}

func (c *scriptedConduit) Dispatch(_ context.Context, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	if c.failures[cmd.Op] > 0 {
		c.failures[cmd.Op]--
		return errors.New("facility error")
	}
	return nil
}

func (c *scriptedConduit) ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]string, len(c.commands))
	for i, cmd := range c.commands {
		ops[i] = cmd.Op
	}
	return ops
}

func TestPresentDirectSucceedsWithoutSetup(t *testing.T) {
	conduit := newScriptedConduit()
	a := NewCallKit(conduit, "VoxShell", nil)

	require.NoError(t, a.Present(context.Background(), "c1", "Alice", false))
	assert.Equal(t, []string{"callkit.report_incoming_call"}, conduit.ops())
}

func TestPresentFallsBackToSetupAndRetry(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.report_incoming_call", 1)
	a := NewCallKit(conduit, "VoxShell", nil)

	require.NoError(t, a.Present(context.Background(), "c1", "Alice", true))
	assert.Equal(t, []string{
		"callkit.report_incoming_call",
		"callkit.setup",
		"callkit.report_incoming_call",
	}, conduit.ops())
}

func TestPresentSurfacesErrorAfterRetry(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.report_incoming_call", 2)
	a := NewCallKit(conduit, "VoxShell", nil)

	err := a.Present(context.Background(), "c1", "Alice", false)
	assert.ErrorIs(t, err, ErrPresentation)
}

func TestSetupRunsOnce(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("telecom.add_incoming_call", 2)
	a := NewTelecom(conduit, "VoxShell", 60*time.Second, nil)

	require.NoError(t, a.Present(context.Background(), "c1", "Alice", false))
	require.NoError(t, a.Present(context.Background(), "c2", "Bob", false))

	setups := 0
	for _, op := range conduit.ops() {
		if op == "telecom.register_phone_account" {
			setups++
		}
	}
	assert.Equal(t, 1, setups, "setup must run exactly once")
}

func TestFailedSetupIsRetryable(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.report_incoming_call", 2)
	conduit.failNext("callkit.setup", 1)
	a := NewCallKit(conduit, "VoxShell", nil)

	require.Error(t, a.Present(context.Background(), "c1", "Alice", false))

	// Setup failed above; the configured flag must not be latched.
	conduit.failNext("callkit.report_incoming_call", 1)
	require.NoError(t, a.Present(context.Background(), "c1", "Alice", false))
}

func TestResolveSpecificCall(t *testing.T) {
	conduit := newScriptedConduit()
	a := NewCallKit(conduit, "VoxShell", nil)

	require.NoError(t, a.Resolve(context.Background(), "c1", ResolveAnswered))
	assert.Equal(t, []string{"callkit.end_call"}, conduit.ops())
}

func TestResolveFallsBackToEndAll(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.end_call", 1)
	a := NewCallKit(conduit, "VoxShell", nil)

	require.NoError(t, a.Resolve(context.Background(), "c1", ResolveTimeout))
	assert.Equal(t, []string{"callkit.end_call", "callkit.end_all_calls"}, conduit.ops())
}

func TestResolveSurfacesTotalFailure(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.end_call", 1)
	conduit.failNext("callkit.end_all_calls", 1)
	a := NewCallKit(conduit, "VoxShell", nil)

	err := a.Resolve(context.Background(), "c1", ResolveTimeout)
	assert.ErrorIs(t, err, ErrResolution)
}

func TestEventsForwardedAndDroppedWhenFull(t *testing.T) {
	a := NewCallKit(newScriptedConduit(), "VoxShell", nil)

	a.HandleEvent(Event{Kind: EventAnswered, CallID: "c1"})
	ev := <-a.Events()
	assert.Equal(t, EventAnswered, ev.Kind)

	// Saturate the buffer; overflow must not block.
	for i := 0; i < eventBuffer+5; i++ {
		a.HandleEvent(Event{Kind: EventDTMF, CallID: "c1"})
	}
}

func TestGuardedConduitFailsFast(t *testing.T) {
	conduit := newScriptedConduit()
	conduit.failNext("callkit.report_incoming_call", 10)

	breaker := resilience.New("conduit", resilience.Settings{TripAfter: 1, Cooldown: time.Minute})
	a := NewCallKit(Guard(conduit, breaker), "VoxShell", nil)

	// First failure trips the breaker; the setup fallback is already
	// rejected without reaching the facility.
	require.Error(t, a.Present(context.Background(), "c1", "Alice", false))

	dispatched := len(conduit.ops())
	err := a.Present(context.Background(), "c2", "Bob", false)
	assert.ErrorIs(t, err, ErrPresentation)
	assert.Equal(t, dispatched, len(conduit.ops()), "open breaker must not reach the facility")
}
