package filter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxshell/backend/internal/shared/types"
)

type memStore struct {
	mu      sync.Mutex
	records []types.DedupRecord
}

func (s *memStore) DedupRecords() []types.DedupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.DedupRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *memStore) SetDedupRecords(records []types.DedupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]types.DedupRecord, len(records))
	copy(s.records, records)
	return nil
}

func signal(messageID string, sentAt time.Time) types.PushSignal {
	return types.PushSignal{
		MessageID:  messageID,
		CallID:     "c1",
		CallerName: "Alice",
		SentAt:     sentAt,
		Origin:     types.OriginForeground,
	}
}

func TestAdmitDecisions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sig      types.PushSignal
		admitted bool
		reason   Reason
	}{
		{"fresh signal", signal("m1", now.Add(-time.Second)), true, ""},
		{"missing timestamp", signal("m2", time.Time{}), false, ReasonInvalidTimestamp},
		{"six minutes old", signal("m3", now.Add(-6*time.Minute)), false, ReasonStale},
		{"exactly at threshold", signal("m4", now.Add(-5*time.Minute)), true, ""},
		{"no message id is admitted", signal("", now), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&memStore{}, Config{Clock: func() time.Time { return now }}, nil)
			dec := f.Admit(tt.sig)
			assert.Equal(t, tt.admitted, dec.Admitted)
			assert.Equal(t, tt.reason, dec.Reason)
		})
	}
}

func TestDuplicateReplay(t *testing.T) {
	now := time.Now()
	f := New(&memStore{}, Config{}, nil)

	first := f.Admit(signal("m1", now))
	require.True(t, first.Admitted)

	replay := f.Admit(signal("m1", now))
	assert.False(t, replay.Admitted)
	assert.Equal(t, ReasonDuplicate, replay.Reason)
}

func TestStaleBeatsNovelty(t *testing.T) {
	now := time.Now()
	f := New(&memStore{}, Config{}, nil)

	dec := f.Admit(signal("never-seen", now.Add(-6*time.Minute)))
	assert.False(t, dec.Admitted)
	assert.Equal(t, ReasonStale, dec.Reason)

	// A stale signal must not poison the window for its message id.
	fresh := f.Admit(signal("never-seen", now))
	assert.True(t, fresh.Admitted)
}

func TestCapacityEviction(t *testing.T) {
	now := time.Now()
	f := New(&memStore{}, Config{Capacity: 3}, nil)

	for i := 0; i < 5; i++ {
		dec := f.Admit(signal(fmt.Sprintf("m%d", i), now))
		require.True(t, dec.Admitted)
	}

	window := f.Window()
	require.Len(t, window, 3)
	assert.Equal(t, "m2", window[0].MessageID)
	assert.Equal(t, "m4", window[2].MessageID)

	// Evicted ids may be admitted again.
	assert.True(t, f.Admit(signal("m0", now)).Admitted)
}

func TestWindowPersistsAcrossRestart(t *testing.T) {
	now := time.Now()
	store := &memStore{}

	f := New(store, Config{}, nil)
	require.True(t, f.Admit(signal("m1", now)).Admitted)

	restarted := New(store, Config{}, nil)
	dec := restarted.Admit(signal("m1", now))
	assert.False(t, dec.Admitted)
	assert.Equal(t, ReasonDuplicate, dec.Reason)
}

func TestConcurrentRedundantDelivery(t *testing.T) {
	now := time.Now()
	f := New(&memStore{}, Config{}, nil)

	const workers = 16
	var wg sync.WaitGroup
	admittedCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Admit(signal("same-message", now)).Admitted {
				admittedCount <- true
			}
		}()
	}
	wg.Wait()
	close(admittedCount)

	assert.Equal(t, 1, len(admittedCount), "exactly one redundant delivery may be admitted")
}
