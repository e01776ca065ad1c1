package query_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/query"
)

const siteClause = "(site:.gov OR site:.edu OR site:.org)"

func TestPlanOneQueryPerKeyword(t *testing.T) {
	p := query.NewPlanner(query.DefaultProfile())
	queries := p.Plan([]string{"quantum computing", "research funding"}, models.RecencyWeek)

	require.Len(t, queries, 2)
	require.True(t, strings.HasPrefix(queries[0].Text, `"quantum computing" AND (`))
	require.True(t, strings.HasPrefix(queries[1].Text, `"research funding" AND (`))
	for _, q := range queries {
		require.Contains(t, q.Text, siteClause)
		require.Contains(t, q.Text, `"federal grant" OR "innovation ecosystem"`)
		require.True(t, strings.HasSuffix(q.Text, " -jobs -admissions -curriculum"))
		require.Equal(t, models.RecencyWeek, q.Recency)
	}
	require.Equal(t, "quantum computing", queries[0].Keyword)
}

func TestPlanFullShape(t *testing.T) {
	p := query.NewPlanner(query.DefaultProfile())
	queries := p.Plan([]string{"semiconductors"}, models.RecencyDay)

	want := `semiconductors AND ("university research funding" OR "federal grant" OR "innovation ecosystem" OR "R&D policy") AND ` +
		siteClause + " -jobs -admissions -curriculum"
	require.Equal(t, want, queries[0].Text)
}

func TestPlanEmptyAndBlank(t *testing.T) {
	p := query.NewPlanner(query.DefaultProfile())
	require.Empty(t, p.Plan(nil, models.RecencyWeek))
	require.Empty(t, p.Plan([]string{"", "   "}, models.RecencyWeek))
}

func TestPlanCollapsesDuplicatesAndWhitespace(t *testing.T) {
	p := query.NewPlanner(query.DefaultProfile())
	queries := p.Plan([]string{"AI  policy", "ai policy", `"chips"`}, models.RecencyMonth)

	require.Len(t, queries, 2)
	require.Equal(t, "AI policy", queries[0].Keyword)
	require.True(t, strings.HasPrefix(queries[0].Text, `"AI policy" AND`))
	require.True(t, strings.HasPrefix(queries[1].Text, "chips AND"))
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	data := "domain_terms:\n  - defense research\nsites:\n  - .mil\n  - ' '\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := query.LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"defense research"}, p.DomainTerms)
	require.Equal(t, []string{".mil"}, p.Sites)
	require.Equal(t, query.DefaultProfile().Exclusions, p.Exclusions)

	q := query.NewPlanner(p).Plan([]string{"hypersonics"}, models.RecencyWeek)
	require.Equal(t, `hypersonics AND ("defense research") AND (site:.mil) -jobs -admissions -curriculum`, q[0].Text)
}

func TestLoadProfileMissingFile(t *testing.T) {
	p, err := query.LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, query.DefaultProfile(), p)

	p, err = query.LoadProfile("")
	require.NoError(t, err)
	require.Equal(t, query.DefaultProfile(), p)
}

func TestLoadProfileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sites: [unclosed"), 0o644))

	_, err := query.LoadProfile(path)
	require.Error(t, err)
}
