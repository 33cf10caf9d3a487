package bridge

import (
	"encoding/json"
	"fmt"
)

// Envelope is a bridge protocol message. On the wire it is a flat JSON
// object with a "type" discriminator alongside the payload fields.
type Envelope struct {
	Type   string
	Fields map[string]interface{}
}

// NewEnvelope builds an envelope of the given type.
func NewEnvelope(msgType string, fields map[string]interface{}) Envelope {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return Envelope{Type: msgType, Fields: fields}
}

// MarshalJSON flattens the envelope into a single object.
func (e Envelope) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(e.Fields)+1)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat["type"] = e.Type
	return json.Marshal(flat)
}

// UnmarshalJSON extracts the "type" discriminator and keeps the rest as
// payload fields.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	msgType, ok := flat["type"].(string)
	if !ok || msgType == "" {
		return fmt.Errorf("envelope missing type field")
	}
	delete(flat, "type")

	e.Type = msgType
	e.Fields = flat
	return nil
}

// String returns the named field as a string, or "" when absent or of
// another type.
func (e Envelope) String(key string) string {
	s, _ := e.Fields[key].(string)
	return s
}

// Bool returns the named field as a bool, defaulting to false.
func (e Envelope) Bool(key string) bool {
	b, _ := e.Fields[key].(bool)
	return b
}
