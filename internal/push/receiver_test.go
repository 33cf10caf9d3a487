package push

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/shared/id"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

type captureSubmitter struct {
	signals []types.PushSignal
	dec     filter.Decision
}

func (s *captureSubmitter) Submit(_ context.Context, sig types.PushSignal) filter.Decision {
	s.signals = append(s.signals, sig)
	return s.dec
}

type captureRegistrar struct {
	deviceID string
	token    string
	err      error
}

func (r *captureRegistrar) Register(_ context.Context, deviceID, token string) error {
	r.deviceID = deviceID
	r.token = token
	return r.err
}

func TestParseSignalRFC3339(t *testing.T) {
	raw := []byte(`{"message_id":"m1","call_id":"c1","caller_name":"Alice","sent_at":"2026-08-29T10:00:00Z","has_video":true}`)

	sig, err := ParseSignal(raw, types.OriginForeground)
	require.NoError(t, err)

	assert.Equal(t, "m1", sig.MessageID)
	assert.Equal(t, "c1", sig.CallID)
	assert.Equal(t, "Alice", sig.CallerName)
	assert.True(t, sig.HasVideo)
	assert.Equal(t, types.OriginForeground, sig.Origin)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), sig.SentAt.UTC())
}

func TestParseSignalUnixMillis(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	raw := []byte(fmt.Sprintf(`{"call_id":"c1","sent_at":%d}`, at.UnixMilli()))

	sig, err := ParseSignal(raw, types.OriginBackground)
	require.NoError(t, err)
	assert.Equal(t, at, sig.SentAt.UTC())
}

func TestParseSignalTimestampEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing", `{"call_id":"c1"}`},
		{"malformed text", `{"call_id":"c1","sent_at":"yesterday"}`},
		{"negative millis", `{"call_id":"c1","sent_at":-5}`},
		{"wrong type", `{"call_id":"c1","sent_at":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := ParseSignal([]byte(tt.raw), types.OriginWake)
			require.NoError(t, err)
			assert.True(t, sig.SentAt.IsZero(), "unreadable sent_at must yield zero time")
		})
	}
}

func TestParseSignalMintsMessageID(t *testing.T) {
	raw := []byte(`{"call_id":"c1","caller_name":"Alice"}`)

	first, err := ParseSignal(raw, types.OriginForeground)
	require.NoError(t, err)
	second, err := ParseSignal(raw, types.OriginForeground)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.MessageID, id.MessagePrefix+"_"))
	assert.NotEqual(t, first.MessageID, second.MessageID)
}

func TestParseSignalMissingCallID(t *testing.T) {
	_, err := ParseSignal([]byte(`{"message_id":"m1"}`), types.OriginForeground)
	assert.Error(t, err)
}

func TestEntryPointsTagOrigin(t *testing.T) {
	raw := []byte(`{"call_id":"c1","sent_at":"2026-08-29T10:00:00Z"}`)
	sub := &captureSubmitter{dec: filter.Decision{Admitted: true}}
	r := NewReceiver(sub, nil, nil, nil)

	_, err := r.HandleForeground(context.Background(), raw)
	require.NoError(t, err)
	_, err = r.HandleBackground(context.Background(), raw)
	require.NoError(t, err)
	_, err = r.HandleWake(context.Background(), raw)
	require.NoError(t, err)

	require.Len(t, sub.signals, 3)
	assert.Equal(t, types.OriginForeground, sub.signals[0].Origin)
	assert.Equal(t, types.OriginBackground, sub.signals[1].Origin)
	assert.Equal(t, types.OriginWake, sub.signals[2].Origin)
}

func TestMalformedPayloadNotSubmitted(t *testing.T) {
	sub := &captureSubmitter{}
	r := NewReceiver(sub, nil, nil, nil)

	_, err := r.HandleForeground(context.Background(), []byte(`not json`))
	assert.Error(t, err)
	assert.Empty(t, sub.signals)
}

func TestRefreshToken(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)

	reg := &captureRegistrar{}
	r := NewReceiver(&captureSubmitter{}, store, reg, nil)

	require.NoError(t, r.RefreshToken(context.Background(), "tok-123"))

	assert.Equal(t, "tok-123", store.PushToken())
	assert.Equal(t, store.DeviceID(), reg.deviceID)
	assert.Equal(t, "tok-123", reg.token)
}

func TestRefreshTokenEmpty(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)

	r := NewReceiver(&captureSubmitter{}, store, nil, nil)
	assert.Error(t, r.RefreshToken(context.Background(), ""))
}
