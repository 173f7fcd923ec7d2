package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecode(t *testing.T) {
	loadedAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	Convey("Given persisted state documents", t, func() {
		Convey("When the document uses the legacy list shape", func() {
			c, err := Decode([]byte(`{"competitions": ["Betify | ITF Men", "Sportaza | ATP | Paris"]}`), loadedAt)

			Convey("Then every entry is migrated and stamped with the load time", func() {
				So(err, ShouldBeNil)
				So(len(c), ShouldEqual, 2)
				So(c[idA], ShouldEqual, loadedAt)
			})

			Convey("Then names are split on the first separator", func() {
				id := models.Identity{Bookmaker: "Sportaza", Competition: "ATP | Paris"}
				So(c.Contains(id), ShouldBeTrue)
			})
		})

		Convey("When the document uses the current map shape", func() {
			c, err := Decode([]byte(`{"competitions": {"Betify | ITF Men": "2026-01-30T10:00:00Z", "Greenluck | NBA": "garbage"}}`), loadedAt)

			Convey("Then timestamps are parsed", func() {
				So(err, ShouldBeNil)
				So(c[idA], ShouldEqual, time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC))
			})

			Convey("Then an unreadable timestamp decodes as the zero time", func() {
				So(c.Contains(idC), ShouldBeTrue)
				So(c[idC].IsZero(), ShouldBeTrue)
			})
		})

		Convey("When the document has an unknown shape", func() {
			for _, doc := range []string{
				``,
				`[]`,
				`{"competitions": 3}`,
				`{"other": []}`,
				`{"competitions": null}`,
				`{"competitions": [1, 2]}`,
			} {
				_, err := Decode([]byte(doc), loadedAt)
				So(errors.Is(err, ErrCorruptState), ShouldBeTrue)
			}
		})
	})
}

func TestEncode(t *testing.T) {
	c := Competitions{
		idB: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		idA: time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600)),
	}
	data, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := string(data)
	if strings.Index(out, "Betify | ITF Men") > strings.Index(out, "Sportaza | ATP Paris") {
		t.Errorf("Encode() keys not sorted:\n%s", out)
	}
	if !strings.Contains(out, `"Betify | ITF Men": "2025-12-31T23:00:00Z"`) {
		t.Errorf("Encode() did not normalize to UTC:\n%s", out)
	}

	back, err := Decode(data, time.Now())
	if err != nil {
		t.Fatalf("Decode(Encode()) error = %v", err)
	}
	for id, want := range c {
		if !back[id].Equal(want) {
			t.Errorf("round trip %s = %v, want %v", id, back[id], want)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(Competitions{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	c, err := Decode(data, time.Now())
	if err != nil || len(c) != 0 {
		t.Errorf("Decode(Encode(empty)) = %v, %v", c, err)
	}
}
