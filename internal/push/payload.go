package push

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/voxshell/backend/internal/shared/id"
	"github.com/voxshell/backend/internal/shared/types"
)

// payload is the wire shape shared by all three delivery channels.
// sent_at arrives as RFC 3339 text or unix milliseconds depending on
// the platform; a missing or unreadable value yields a zero time, which
// the freshness filter rejects downstream.
type payload struct {
	MessageID  string          `json:"message_id"`
	CallID     string          `json:"call_id"`
	CallerName string          `json:"caller_name"`
	SentAt     json.RawMessage `json:"sent_at"`
	HasVideo   bool            `json:"has_video"`
}

// ParseSignal decodes a platform push payload into a call signal tagged
// with its delivery origin.
func ParseSignal(raw []byte, origin types.SignalOrigin) (types.PushSignal, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.PushSignal{}, fmt.Errorf("decode push payload: %w", err)
	}
	if p.CallID == "" {
		return types.PushSignal{}, fmt.Errorf("push payload missing call_id")
	}
	if p.MessageID == "" {
		// Without a platform message id every such signal would dedup
		// against the others; mint one so the seen-window stays keyed.
		p.MessageID = string(id.NewMessageID())
	}

	return types.PushSignal{
		MessageID:  p.MessageID,
		CallID:     p.CallID,
		CallerName: p.CallerName,
		SentAt:     parseSentAt(p.SentAt),
		HasVideo:   p.HasVideo,
		Origin:     origin,
	}, nil
}

func parseSentAt(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return time.Time{}
		}
		return t
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil && millis > 0 {
		return time.UnixMilli(millis)
	}

	return time.Time{}
}
