package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// unwrapBody returns the payload of an event. When the event is an envelope
// with a "body" field, the body is decoded: a JSON string is taken as the
// payload text, an object is used as is.
func unwrapBody(event []byte) ([]byte, error) {
	event = bytes.TrimSpace(event)
	if len(event) == 0 {
		return []byte("{}"), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(event, &fields); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	raw, ok := fields["body"]
	if !ok {
		return event, nil
	}

	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return []byte("{}"), nil
	case raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		if text == "" {
			return []byte("{}"), nil
		}
		return []byte(text), nil
	default:
		return raw, nil
	}
}

// decodeEvent unwraps event and decodes its payload into v.
func decodeEvent(event []byte, v any) error {
	payload, err := unwrapBody(event)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// validSummaryID reports whether id can be used as a single key segment.
func validSummaryID(id string) bool {
	return validSegment(id)
}

// validFileName reports whether name stays inside its job's upload prefix.
func validFileName(name string) bool {
	return validSegment(name)
}

func validSegment(s string) bool {
	if strings.TrimSpace(s) == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
