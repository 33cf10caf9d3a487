package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAndPresented(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())

	result, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
		"title":       "Call Alice back",
	}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	identifier := result.Data["identifier"].(string)
	assert.Equal(t, DeriveIdentifier("Alice", "2026-09-01T10:00:00Z"), identifier)

	panel, err := p.Execute(context.Background(), "notify.presented", nil, nil)
	require.NoError(t, err)
	items := panel.Data["notifications"].([]interface{})
	require.Len(t, items, 1)

	first := items[0].(map[string]interface{})
	assert.Equal(t, identifier, first["identifier"])
	assert.Equal(t, "Call Alice back", first["title"])
}

func TestCancelByCallerAndTimestampIsIdempotent(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())

	_, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
	}, nil)
	require.NoError(t, err)

	cancelParams := map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
	}
	for i := 0; i < 3; i++ {
		result, err := p.Execute(context.Background(), "notify.cancel", cancelParams, nil)
		require.NoError(t, err)
		assert.True(t, result.Success)
	}

	panel, err := p.Execute(context.Background(), "notify.presented", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, panel.Data["notifications"])
}

func TestScheduleSameReminderReplaces(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())
	params := map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
	}

	_, err := p.Execute(context.Background(), "notify.schedule", params, nil)
	require.NoError(t, err)
	_, err = p.Execute(context.Background(), "notify.schedule", params, nil)
	require.NoError(t, err)

	panel, err := p.Execute(context.Background(), "notify.presented", nil, nil)
	require.NoError(t, err)
	assert.Len(t, panel.Data["notifications"], 1)
}

func TestScheduleWithRecurrence(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())
	p.clock = func() time.Time {
		return time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	}

	result, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
		"caller_name": "Standup",
		"recurrence":  "0 10 * * *",
	}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	fireAt, err := time.Parse(time.RFC3339, result.Data["fire_at"].(string))
	require.NoError(t, err)
	assert.Equal(t, 10, fireAt.Hour())
	assert.True(t, fireAt.After(time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)))
}

func TestScheduleRejectsBadRecurrence(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())

	result, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
		"caller_name": "Alice",
		"recurrence":  "every tuesday-ish",
	}, nil)
	assert.Error(t, err)
	assert.False(t, result.Success)
}

func TestScheduleRequiresTimeOrRecurrence(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())

	result, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
		"caller_name": "Alice",
	}, nil)
	assert.Error(t, err)
	assert.False(t, result.Success)
}

func TestClear(t *testing.T) {
	p := NewProvider(NewMemoryScheduler())

	for _, caller := range []string{"Alice", "Bob"} {
		_, err := p.Execute(context.Background(), "notify.schedule", map[string]interface{}{
			"caller_name": caller,
			"fire_at":     "2026-09-01T10:00:00Z",
		}, nil)
		require.NoError(t, err)
	}

	_, err := p.Execute(context.Background(), "notify.clear", nil, nil)
	require.NoError(t, err)

	panel, err := p.Execute(context.Background(), "notify.presented", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, panel.Data["notifications"])
}

func TestDeriveIdentifierStable(t *testing.T) {
	a := DeriveIdentifier("Alice", "2026-09-01T10:00:00Z")
	b := DeriveIdentifier("Alice", "2026-09-01T10:00:00Z")
	c := DeriveIdentifier("Bob", "2026-09-01T10:00:00Z")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
