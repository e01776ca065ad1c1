package dedupe

import (
	"strings"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/processing"
)

// MergeStats describes what the merge folded away.
type MergeStats struct {
	Hits       int
	MissingURL int
	Duplicates int
	Truncated  int
}

// MergeHits folds hit lists, given in query-plan order, into Document stubs.
// Hits without a URL are dropped, the first hit for a canonical URL wins and
// the result is cut to max documents (max <= 0 keeps everything).
func MergeHits(lists [][]models.SearchHit, max int) ([]models.Document, MergeStats) {
	var stats MergeStats
	merged := NewOrdered[models.Document](max)

	for _, hits := range lists {
		for _, hit := range hits {
			stats.Hits++
			key := processing.CanonicalURL(hit.URL)
			if key == "" {
				stats.MissingURL++
				continue
			}
			hit.URL = strings.TrimSpace(hit.URL)
			if !merged.Add(key, stubFromHit(hit)) {
				stats.Duplicates++
			}
		}
	}

	docs := merged.Values(max)
	stats.Truncated = merged.Len() - len(docs)
	return docs, stats
}

func stubFromHit(hit models.SearchHit) models.Document {
	doc := models.NewStub(hit)
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = processing.GenerateTitleFromText(processing.CollapseWhitespace(hit.Snippet), 12)
	}
	if doc.Title == "" {
		doc.Title = "No Title"
	}
	return doc
}
