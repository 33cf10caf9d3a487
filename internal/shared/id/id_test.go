package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedIDPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"call id", NewCallID().String(), CallPrefix},
		{"message id", NewMessageID().String(), MessagePrefix},
		{"session id", NewSessionID().String(), SessionPrefix},
		{"request id", NewRequestID().String(), RequestPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := strings.SplitN(tt.id, "_", 2)
			require.Len(t, parts, 2)
			assert.Equal(t, tt.prefix, parts[0])
			assert.True(t, IsValid(parts[1]), "suffix should be a valid ULID")
		})
	}
}

func TestGeneratorUniqueness(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := gen.GenerateString()
		require.False(t, seen[id], "duplicate ULID generated")
		seen[id] = true
	}
}

func TestTimestampExtraction(t *testing.T) {
	id := Default().GenerateString()

	ts, err := Timestamp(id)
	require.NoError(t, err)
	assert.False(t, ts.IsZero())

	_, err = Timestamp("not-a-ulid")
	assert.Error(t, err)
}
