package models

import (
	"sort"
	"strings"
)

// IdentitySeparator joins bookmaker and competition in the persisted key.
const IdentitySeparator = " | "

// Identity is the deduplication key of a competition on a bookmaker.
//
// It is kept as a pair in memory; the joined string form only exists in the
// state file and in messages. A competition name containing the separator
// does not round-trip through ParseIdentity unchanged.
type Identity struct {
	Bookmaker   string `json:"bookmaker"`
	Competition string `json:"competition"`
}

func (id Identity) String() string {
	return id.Bookmaker + IdentitySeparator + id.Competition
}

// ParseIdentity splits a persisted key on the first separator.
func ParseIdentity(s string) (Identity, bool) {
	bk, comp, ok := strings.Cut(s, IdentitySeparator)
	if !ok {
		return Identity{}, false
	}
	return Identity{Bookmaker: bk, Competition: comp}, true
}

// SortIdentities orders identities by their serialized key.
func SortIdentities(ids []Identity) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
