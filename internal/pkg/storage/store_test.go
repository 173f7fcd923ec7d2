package storage

import (
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	idA = models.Identity{Bookmaker: "Betify", Competition: "ITF Men"}
	idB = models.Identity{Bookmaker: "Sportaza", Competition: "ATP Paris"}
	idC = models.Identity{Bookmaker: "Greenluck", Competition: "NBA"}
)

func TestPrune(t *testing.T) {
	Convey("Given a store with entries of various ages", t, func() {
		now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
		window := 7 * 24 * time.Hour
		c := Competitions{
			idA: now.Add(-8 * 24 * time.Hour),
			idB: now.Add(-6 * 24 * time.Hour),
			idC: time.Time{},
		}

		Convey("When pruning with a 7 day window", func() {
			pruned, removed := Prune(c, window, now)

			Convey("Then the 8 day old entry is removed and the 6 day old one kept", func() {
				So(pruned.Contains(idA), ShouldBeFalse)
				So(pruned.Contains(idB), ShouldBeTrue)
				So(pruned[idB], ShouldEqual, c[idB])
			})

			Convey("Then an entry with an unreadable timestamp is removed", func() {
				So(pruned.Contains(idC), ShouldBeFalse)
				So(removed, ShouldEqual, 2)
			})

			Convey("Then the input is left untouched", func() {
				So(len(c), ShouldEqual, 3)
			})
		})

		Convey("When an entry is exactly window old", func() {
			edge := Competitions{idA: now.Add(-window)}
			pruned, removed := Prune(edge, window, now)

			Convey("Then it is kept", func() {
				So(removed, ShouldEqual, 0)
				So(pruned.Contains(idA), ShouldBeTrue)
			})
		})
	})
}

func TestExtend(t *testing.T) {
	Convey("Given a store with one known identity", t, func() {
		first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		now := first.Add(48 * time.Hour)
		c := Competitions{idA: first}

		Convey("When extending with a known and a fresh identity", func() {
			out, added := Extend(c, []models.Identity{idA, idB, idB}, now)

			Convey("Then only the fresh one is added, stamped now", func() {
				So(added, ShouldEqual, 1)
				So(out[idB], ShouldEqual, now)
			})

			Convey("Then the known entry keeps its first-seen time", func() {
				So(out[idA], ShouldEqual, first)
			})

			Convey("Then the input is left untouched", func() {
				So(c.Contains(idB), ShouldBeFalse)
			})
		})
	})
}

func TestIdentities(t *testing.T) {
	c := Competitions{idB: time.Now(), idA: time.Now(), idC: time.Now()}
	got := c.Identities()
	want := []models.Identity{idA, idC, idB}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Identities()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
