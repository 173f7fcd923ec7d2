package betify

import (
	"encoding/json"

	"github.com/Vodeneev/openingalert/internal/pkg/parserutil"
)

// Minimal sptpub prematch API models.

type indexResponse struct {
	TopEventsVersions  json.RawMessage `json:"top_events_versions"`
	RestEventsVersions json.RawMessage `json:"rest_events_versions"`
}

type versionPage struct {
	Events      map[string]Event      `json:"events"`
	Tournaments map[string]Tournament `json:"tournaments"`
}

type Event struct {
	Desc EventDesc `json:"desc"`
	// market id -> variant key -> outcome id -> outcome
	Markets map[string]map[string]map[string]Outcome `json:"markets"`
}

type EventDesc struct {
	Sport       parserutil.FlexString `json:"sport"`
	Tournament  parserutil.FlexString `json:"tournament"`
	Scheduled   int64                 `json:"scheduled"` // unix seconds
	Competitors []Competitor          `json:"competitors"`
}

type Competitor struct {
	ID   parserutil.FlexString `json:"id"`
	Name string                `json:"name"`
}

type Outcome struct {
	K parserutil.FlexString `json:"k"` // decimal odd
}

type Tournament struct {
	Name string `json:"name"`
}
