package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/craftbeerbot/internal/dialog"
)

// marshalAttributes converts an attribute bag to canonical JSON TEXT for storage.
// A nil bag is stored as "{}".
func marshalAttributes(attrs map[string]string) (string, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	data, err := dialog.MarshalCanonical(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses stored attribute JSON.
// Returns an empty (not nil) map for "{}".
func unmarshalAttributes(text string) (map[string]string, error) {
	attrs := map[string]string{}
	if err := json.Unmarshal([]byte(text), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}
