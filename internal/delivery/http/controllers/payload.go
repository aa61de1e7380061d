package controllers

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// payloadString reads a member as text. Numbers and booleans keep their literal form; null and absent are "".
func payloadString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

// payloadID reads an integer id given as a JSON number or digit string. Anything else is 0.
func payloadID(raw json.RawMessage) int64 {
	id, err := strconv.ParseInt(payloadString(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// optionalString returns nil when key is absent from the payload.
func optionalString(payload map[string]json.RawMessage, key string) *string {
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	s := payloadString(raw)
	return &s
}
