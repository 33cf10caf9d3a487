package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxshell/backend/internal/bridge"
	"github.com/voxshell/backend/internal/call/controller"
	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/call/ui"
	"github.com/voxshell/backend/internal/lifecycle"
	"github.com/voxshell/backend/internal/shared/types"
)

func TestCallCommandsFailWithoutHostTransport(t *testing.T) {
	conduit := newBridgeConduit(bridge.NewRouter(nil, nil))

	err := conduit.Dispatch(context.Background(), ui.Command{
		Op:     "callkit.report_incoming_call",
		CallID: "c1",
	})
	assert.ErrorIs(t, err, bridge.ErrNoTransport)
}

func TestCallCommandsReachAttachedHost(t *testing.T) {
	router := bridge.NewRouter(nil, nil)
	host := &recordingTransport{}
	router.Attach(host)

	conduit := newBridgeConduit(router)
	require.NoError(t, conduit.Dispatch(context.Background(), ui.Command{
		Op:     "callkit.end_call",
		CallID: "c1",
	}))

	require.Len(t, host.sent, 1)
	assert.Equal(t, "call-ui-command", host.sent[0].Type)
	assert.Equal(t, "callkit.end_call", host.sent[0].String("op"))
	assert.Equal(t, "c1", host.sent[0].String("call_id"))
}

// A fresh signal arriving while no host is attached must not ring
// invisibly: presentation fails and no session survives.
func TestSignalWithoutHostDoesNotLeaveGhostSession(t *testing.T) {
	router := bridge.NewRouter(nil, nil)
	adapter := ui.NewCallKit(newBridgeConduit(router), "VoxShell", nil)
	ctrl := controller.New(controller.Config{},
		filter.New(nil, filter.Config{}, nil),
		adapter,
		lifecycle.New(nil),
		newBridgeForegrounder(router),
	)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-ctrl.Done()
	})

	dec := ctrl.Submit(ctx, types.PushSignal{
		MessageID:  "m1",
		CallID:     "c1",
		CallerName: "Alice",
		SentAt:     time.Now(),
		Origin:     types.OriginForeground,
	})

	require.True(t, dec.Admitted)
	assert.Nil(t, ctrl.Snapshot(ctx))
}

type recordingTransport struct {
	sent []bridge.Envelope
}

func (t *recordingTransport) WriteEnvelope(env bridge.Envelope) error {
	t.sent = append(t.sent, env)
	return nil
}
