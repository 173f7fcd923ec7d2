package detector

import (
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

// CurrentIdentities returns the distinct identities of the rows that have a
// bookmaker and a competition, sorted.
func CurrentIdentities(t models.Table) []models.Identity {
	seen := make(map[models.Identity]struct{})
	var ids []models.Identity
	for _, r := range t.Rows {
		id, ok := r.Identity()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	models.SortIdentities(ids)
	return ids
}

// ComputeNovelty returns the identities present in current and those among
// them that retained does not know yet. Both are sorted.
func ComputeNovelty(current models.Table, retained storage.Competitions) (all, fresh []models.Identity) {
	all = CurrentIdentities(current)
	for _, id := range all {
		if !retained.Contains(id) {
			fresh = append(fresh, id)
		}
	}
	return all, fresh
}
