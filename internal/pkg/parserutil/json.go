package parserutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes a JSON string or number into its text form. Numbers keep
// their literal digits so large ids are not rounded through float64.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*f = FlexString(b)
	default:
		return fmt.Errorf("flex string: unexpected JSON %s", b)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlattenIDs decodes a JSON array of ids (strings or numbers), unwrapping a
// single nested array: [[1,2]] and [1,2] both give ["1","2"].
func FlattenIDs(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	if len(items) == 1 && len(bytes.TrimSpace(items[0])) > 0 && bytes.TrimSpace(items[0])[0] == '[' {
		return FlattenIDs(items[0])
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var id FlexString
		if err := json.Unmarshal(item, &id); err != nil {
			return nil, fmt.Errorf("decode id: %w", err)
		}
		if id != "" {
			out = append(out, id.String())
		}
	}
	return out, nil
}

// Dedupe keeps the first occurrence of each value, preserving order.
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// StringSet turns ids into a lookup set; nil when ids is empty.
func StringSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
