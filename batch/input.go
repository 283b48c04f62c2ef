package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ReadItems decodes a batch payload: a bare JSON array of items, an
// {"items": [...]} wrapper, or a single item object (a one-item batch).
// Items arriving inside the upstream {"json": {...}} per-item envelope
// are unwrapped.
func ReadItems(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	var items []json.RawMessage
	switch firstByte(data) {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
	case '{':
		var wrapper struct {
			Items *[]json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		if wrapper.Items != nil {
			items = *wrapper.Items
		} else {
			items = []json.RawMessage{json.RawMessage(bytes.TrimSpace(data))}
		}
	default:
		return nil, fmt.Errorf(`decode batch: expected a JSON array, an {"items": ...} wrapper, or a single item object`)
	}

	for i, item := range items {
		items[i] = unwrap(item)
	}
	return items, nil
}

// unwrap strips the {"json": {...}} envelope some upstream producers put
// around each item. Anything else passes through untouched.
func unwrap(item json.RawMessage) json.RawMessage {
	var env struct {
		JSON json.RawMessage `json:"json"`
	}
	if err := json.Unmarshal(item, &env); err != nil {
		return item
	}
	if inner := bytes.TrimSpace(env.JSON); len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return item
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
