package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

// stateDocument is the persisted shape: {"competitions": {"A | B": "<RFC3339>"}}.
// The legacy shape {"competitions": ["A | B"]} is still accepted on read.
type stateDocument struct {
	Competitions json.RawMessage `json:"competitions"`
}

// Decode reads a state document. Legacy entries are stamped with loadedAt;
// timestamps that fail to parse decode as the zero time.
func Decode(data []byte, loadedAt time.Time) (Competitions, error) {
	var doc stateDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	raw := bytes.TrimSpace(doc.Competitions)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing \"competitions\"", ErrCorruptState)
	}

	out := Competitions{}
	switch raw[0] {
	case '[':
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			return nil, fmt.Errorf("%w: legacy list: %v", ErrCorruptState, err)
		}
		for _, key := range keys {
			if id, ok := parseKey(key); ok {
				out[id] = loadedAt
			}
		}
		slog.Info("Migrated legacy state", "competitions", len(out))
	case '{':
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		for key, v := range entries {
			id, ok := parseKey(key)
			if !ok {
				continue
			}
			out[id] = ParseTimestamp(v)
		}
	default:
		return nil, fmt.Errorf("%w: \"competitions\" is neither a list nor an object", ErrCorruptState)
	}
	return out, nil
}

// Encode renders c in the current shape with keys sorted.
func Encode(c Competitions) ([]byte, error) {
	doc := struct {
		Competitions map[string]string `json:"competitions"`
	}{Competitions: make(map[string]string, len(c))}
	for id, t := range c {
		doc.Competitions[id.String()] = FormatTimestamp(t)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatTimestamp renders a first-seen time as RFC 3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp reads a JSON string timestamp, zero time when unreadable.
func ParseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	return parseTimestampString(s)
}

func parseTimestampString(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseKey(key string) (models.Identity, bool) {
	id, ok := models.ParseIdentity(key)
	if !ok {
		slog.Warn("Dropping state entry without separator", "key", key)
	}
	return id, ok
}
