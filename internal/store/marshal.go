package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalRequest converts a request value to JSON TEXT for the request_json
// column. HTML escaping is disabled so expressions such as "t<1 & t>0" are
// stored as typed rather than as \u003c and \u0026 escapes.
func MarshalRequest(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// UnmarshalRequest parses request_json TEXT into v.
func UnmarshalRequest(data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}
	return nil
}
