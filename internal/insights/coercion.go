package insights

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// coerceToString renders a scalar the way it would read in a list
func coerceToString(value any) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", value)
}

// compactJSON falls back to fmt when the value cannot be encoded
func compactJSON(value any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return coerceToString(value)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
