package rank

import (
	"sort"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// DefaultCap is the number of documents handed on for the report.
const DefaultCap = 7

// Select orders docs best-first and returns at most n of them. The sort is
// stable, so equal scores keep merge order, and documents without full text
// always come after extracted ones. The input slice is left untouched.
func Select(docs []models.Document, n int) []models.Document {
	selected, _ := Partition(docs, n)
	return selected
}

// Partition orders docs like Select and splits them at n. Scored documents in
// the first part move to ranked and the rest to dropped; documents that never
// reached scoring keep their state.
func Partition(docs []models.Document, n int) (selected, dropped []models.Document) {
	if n <= 0 {
		n = DefaultCap
	}

	ordered := make([]models.Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Extracted() != b.Extracted() {
			return a.Extracted()
		}
		return a.Score > b.Score
	})

	if len(ordered) < n {
		n = len(ordered)
	}
	selected = ordered[:n:n]
	dropped = ordered[n:]
	for i := range selected {
		settle(&selected[i], models.StateRanked)
	}
	for i := range dropped {
		settle(&dropped[i], models.StateDropped)
	}
	return selected, dropped
}

func settle(d *models.Document, final models.DocState) {
	if d.State == models.StateScored || d.State == models.StateSkipScored {
		d.Advance(final)
	}
}
