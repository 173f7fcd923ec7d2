// Package storage persists the set of competitions already seen, each with
// the time it was first observed.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

// ErrCorruptState is returned when persisted state has an unknown shape.
var ErrCorruptState = errors.New("corrupt state")

// Competitions maps each seen identity to its first-seen time.
type Competitions map[models.Identity]time.Time

// Store loads and saves Competitions. Implementations replace the whole set
// on Save.
type Store interface {
	Load(ctx context.Context) (Competitions, error)
	Save(ctx context.Context, c Competitions) error
	Close() error
}

func (c Competitions) Contains(id models.Identity) bool {
	_, ok := c[id]
	return ok
}

// Identities returns the keys sorted by serialized form.
func (c Competitions) Identities() []models.Identity {
	ids := make([]models.Identity, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	models.SortIdentities(ids)
	return ids
}

func (c Competitions) Clone() Competitions {
	out := make(Competitions, len(c))
	for id, t := range c {
		out[id] = t
	}
	return out
}

// Prune returns a copy of c without the entries older than window at now.
// Entries with a zero first-seen time could not be read back and are removed.
func Prune(c Competitions, window time.Duration, now time.Time) (Competitions, int) {
	out := make(Competitions, len(c))
	removed := 0
	for id, seen := range c {
		if seen.IsZero() || now.Sub(seen) > window {
			removed++
			continue
		}
		out[id] = seen
	}
	return out, removed
}

// Extend returns a copy of c with every fresh identity stamped at now.
// Existing entries keep their first-seen time.
func Extend(c Competitions, fresh []models.Identity, now time.Time) (Competitions, int) {
	out := c.Clone()
	added := 0
	for _, id := range fresh {
		if _, ok := out[id]; ok {
			continue
		}
		out[id] = now
		added++
	}
	return out, added
}
