package query

import (
	"strings"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// Planner expands keywords into independent search queries.
type Planner struct {
	profile Profile
	suffix  string
}

// NewPlanner precomputes the clauses shared by every query of the profile.
func NewPlanner(p Profile) *Planner {
	return &Planner{profile: p, suffix: buildSuffix(p)}
}

// Plan returns one query per distinct, non-blank keyword in input order.
// No keywords means no queries.
func (p *Planner) Plan(keywords []string, recency models.Recency) []models.Query {
	seen := make(map[string]struct{}, len(keywords))
	queries := make([]models.Query, 0, len(keywords))
	for _, raw := range keywords {
		kw := strings.Join(strings.Fields(raw), " ")
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		queries = append(queries, models.Query{
			Text:    quoteKeyword(kw) + p.suffix,
			Keyword: kw,
			Recency: recency,
		})
	}
	return queries
}

func quoteKeyword(kw string) string {
	kw = strings.ReplaceAll(kw, `"`, "")
	if strings.Contains(kw, " ") {
		return `"` + kw + `"`
	}
	return kw
}

func buildSuffix(p Profile) string {
	var b strings.Builder
	if len(p.DomainTerms) > 0 {
		quoted := make([]string, 0, len(p.DomainTerms))
		for _, term := range p.DomainTerms {
			quoted = append(quoted, `"`+term+`"`)
		}
		b.WriteString(" AND (")
		b.WriteString(strings.Join(quoted, " OR "))
		b.WriteString(")")
	}
	if len(p.Sites) > 0 {
		sites := make([]string, 0, len(p.Sites))
		for _, site := range p.Sites {
			sites = append(sites, "site:"+site)
		}
		b.WriteString(" AND (")
		b.WriteString(strings.Join(sites, " OR "))
		b.WriteString(")")
	}
	for _, ex := range p.Exclusions {
		b.WriteString(" -")
		b.WriteString(ex)
	}
	return b.String()
}
