package rank_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/rank"
)

func scored(url string, score float64) models.Document {
	text := "body of " + url
	d := models.NewStub(models.SearchHit{URL: url})
	d.FullText = &text
	d.Advance(models.StateExtracted)
	d.Score = score
	d.Advance(models.StateScored)
	return d
}

func failed(url string) models.Document {
	d := models.NewStub(models.SearchHit{URL: url})
	d.Advance(models.StateExtractionFailed)
	d.Advance(models.StateSkipScored)
	return d
}

func urls(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.URL)
	}
	return out
}

func TestSelectDescendingStable(t *testing.T) {
	docs := []models.Document{
		scored("a", 0.2), scored("b", 0.9), scored("c", 0.5), scored("d", 0.9), scored("e", 0.5),
	}
	got := rank.Select(docs, 7)
	require.Equal(t, []string{"b", "d", "c", "e", "a"}, urls(got))
	for _, d := range got {
		require.Equal(t, models.StateRanked, d.State)
	}
	require.Equal(t, models.StateScored, docs[0].State)
}

func TestSelectCapsOutput(t *testing.T) {
	var docs []models.Document
	for i := 0; i < 12; i++ {
		docs = append(docs, scored(fmt.Sprintf("u%02d", i), float64(i)/20))
	}
	got := rank.Select(docs, 7)
	require.Len(t, got, 7)
	require.Equal(t, "u11", got[0].URL)
	require.Equal(t, "u05", got[6].URL)
}

func TestSelectFailedDocumentsLast(t *testing.T) {
	docs := []models.Document{failed("x"), scored("a", 0), scored("b", 0.3), failed("y")}
	got := rank.Select(docs, 7)
	require.Equal(t, []string{"b", "a", "x", "y"}, urls(got))
	require.Nil(t, got[2].FullText)
	require.Zero(t, got[2].Score)
}

func TestSelectExcludesFailedWhenCorpusExceedsCap(t *testing.T) {
	docs := []models.Document{failed("x"), scored("a", 0), scored("b", 0.1), scored("c", 0.2)}
	got := rank.Select(docs, 3)
	require.Equal(t, []string{"c", "b", "a"}, urls(got))
}

func TestSelectEmpty(t *testing.T) {
	require.Empty(t, rank.Select(nil, 7))
}

func TestSelectDefaultCap(t *testing.T) {
	var docs []models.Document
	for i := 0; i < 10; i++ {
		docs = append(docs, scored(fmt.Sprint(i), 0.5))
	}
	require.Len(t, rank.Select(docs, 0), rank.DefaultCap)
}

func TestPartitionMarksDropped(t *testing.T) {
	docs := []models.Document{scored("a", 0.1), failed("x"), scored("b", 0.8), scored("c", 0.4)}
	selected, dropped := rank.Partition(docs, 2)

	require.Equal(t, []string{"b", "c"}, urls(selected))
	require.Equal(t, []string{"a", "x"}, urls(dropped))
	for _, d := range selected {
		require.Equal(t, models.StateRanked, d.State)
	}
	for _, d := range dropped {
		require.Equal(t, models.StateDropped, d.State)
	}
}

func TestPartitionLeavesUnscoredStates(t *testing.T) {
	stub := models.NewStub(models.SearchHit{URL: "s"})
	text := "body"
	extracted := models.NewStub(models.SearchHit{URL: "e"})
	extracted.FullText = &text
	extracted.Advance(models.StateExtracted)

	selected, dropped := rank.Partition([]models.Document{stub, extracted}, 1)
	require.Equal(t, "e", selected[0].URL)
	require.Equal(t, models.StateExtracted, selected[0].State)
	require.Equal(t, models.StateStub, dropped[0].State)
}
