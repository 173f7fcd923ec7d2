package detector

import (
	"reflect"
	"testing"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

func ids(keys ...string) []models.Identity {
	var out []models.Identity
	for _, k := range keys {
		id, _ := models.ParseIdentity(k)
		out = append(out, id)
	}
	return out
}

func TestComputeNovelty(t *testing.T) {
	noComp := row("Betify", "", "e", 2)
	noComp.Competition = nil
	noBk := row("", "Ligue 1", "e", 2)

	current := table(
		row("Sportaza", "WTA Rome", "e1", 2),
		row("Betify", "ATP Paris", "e2", 2),
		row("Betify", "ATP Paris", "e3", 2),
		row("Betify", "ITF Men", "e4", 2),
		noComp,
		noBk,
	)
	retained := storage.Competitions{ids("Betify | ITF Men")[0]: fixedNow}

	all, fresh := ComputeNovelty(current, retained)

	wantAll := ids("Betify | ATP Paris", "Betify | ITF Men", "Sportaza | WTA Rome")
	if !reflect.DeepEqual(all, wantAll) {
		t.Errorf("current = %v, want %v", all, wantAll)
	}
	wantFresh := ids("Betify | ATP Paris", "Sportaza | WTA Rome")
	if !reflect.DeepEqual(fresh, wantFresh) {
		t.Errorf("fresh = %v, want %v", fresh, wantFresh)
	}
}

func TestComputeNoveltyEmptyTable(t *testing.T) {
	all, fresh := ComputeNovelty(models.EmptyTable(), storage.Competitions{})
	if len(all) != 0 || len(fresh) != 0 {
		t.Errorf("ComputeNovelty(empty) = %v, %v, want none", all, fresh)
	}
}

func TestComputeNoveltyIdempotent(t *testing.T) {
	current := table(row("Betify", "ATP Paris", "e1", 2), row("Greenluck", "NBA", "e2", 2))

	_, first := ComputeNovelty(current, storage.Competitions{})
	if len(first) != 2 {
		t.Fatalf("first run fresh = %v, want 2 entries", first)
	}
	store, _ := storage.Extend(storage.Competitions{}, first, fixedNow)

	_, second := ComputeNovelty(current, store)
	if len(second) != 0 {
		t.Errorf("second run fresh = %v, want none", second)
	}
}
