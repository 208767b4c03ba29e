package upstream

import (
	"encoding/json"
	"fmt"
)

// listKeys are the wrapper keys the backends use interchangeably for list
// payloads. The first key present wins.
var listKeys = []string{"items", "data", "clients", "results", "leads"}

// UnwrapList normalizes a list payload: the backends sometimes return a bare
// JSON array and sometimes an object wrapping the array under one of a few
// well-known keys. Both shapes yield the same raw array. A null payload
// yields an empty array.
func UnwrapList(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := trimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return json.RawMessage("[]"), nil
	}

	switch trimmed[0] {
	case '[':
		return trimmed, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode list wrapper: %w", err)
		}
		for _, key := range listKeys {
			if inner, ok := wrapper[key]; ok {
				return UnwrapList(inner)
			}
		}
		return nil, fmt.Errorf("list wrapper has none of the known keys %v", listKeys)
	default:
		return nil, fmt.Errorf("payload is neither a list nor a list wrapper")
	}
}

func trimSpace(raw json.RawMessage) json.RawMessage {
	start := 0
	for start < len(raw) && isJSONSpace(raw[start]) {
		start++
	}
	end := len(raw)
	for end > start && isJSONSpace(raw[end-1]) {
		end--
	}
	return raw[start:end]
}

func isJSONSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
