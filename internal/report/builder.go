package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
	"github.com/DeafMist/fed-landscape-radar/internal/processing"
)

// DefaultTitle heads every report unless the caller overrides it.
const DefaultTitle = "Fed Landscape Report"

const (
	noArticlesBody = "No new articles were found for your selected keywords."
	keyTermsLimit  = 5
	keyTermsMinLen = 4
	summaryChars   = 600
)

// Builder renders pipeline results as markdown reports.
type Builder struct {
	title string
	now   func() time.Time
}

// NewBuilder creates a Builder. An empty title falls back to DefaultTitle.
func NewBuilder(title string) *Builder {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return &Builder{title: title, now: time.Now}
}

// Build turns a run result into a deliverable report for recipient.
func (b *Builder) Build(res pipeline.Result, recipient string) models.Report {
	rep := models.Report{
		RunID:       res.RunID,
		Recipient:   recipient,
		Status:      string(res.Status),
		Documents:   res.Ranked,
		GeneratedAt: b.now().UTC(),
	}
	if rep.Documents == nil {
		rep.Documents = []models.Document{}
	}

	switch {
	case res.Status == pipeline.StatusFailed && len(res.Ranked) == 0:
		rep.Subject = "Report Generation Failed"
		rep.Body = fmt.Sprintf("An error occurred during report generation (run %s). Please try again later.", res.RunID)
	case len(res.Ranked) == 0:
		rep.Subject = "Your " + b.title
		rep.Body = noArticlesBody
	default:
		rep.Subject = "Your " + b.title + " is Ready"
		rep.Body = b.Markdown(res.Ranked)
	}
	return rep
}

// Markdown renders one section per document in the given order.
func (b *Builder) Markdown(docs []models.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\nThis report summarizes recent federal activities.\n\n---\n\n", b.title)

	for _, doc := range docs {
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			title = "No Title"
		}
		source := strings.TrimSpace(doc.Source)
		if source == "" {
			source = "N/A"
		}
		link := strings.TrimSpace(doc.URL)
		if link == "" {
			link = "#"
		}

		fmt.Fprintf(&sb, "## %s\n", title)
		fmt.Fprintf(&sb, "**Source:** %s\n", source)
		if doc.Published != "" {
			fmt.Fprintf(&sb, "**Published:** %s\n", doc.Published)
		}
		fmt.Fprintf(&sb, "**Relevance:** %d%%\n\n", Percent(doc.Score))

		if summary := summarize(doc); summary != "" {
			sb.WriteString(summary)
			sb.WriteString("\n\n")
		}
		if terms := processing.ExtractKeywords(doc.Text(), keyTermsLimit, keyTermsMinLen); len(terms) > 0 {
			fmt.Fprintf(&sb, "**Key Terms:** %s\n\n", strings.Join(terms, ", "))
		}
		fmt.Fprintf(&sb, "[Read Full Article](%s)\n\n---\n\n", link)
	}
	return sb.String()
}

// Percent converts a score in [0,1] to a truncated whole percentage.
func Percent(score float64) int {
	switch {
	case score <= 0 || score != score:
		return 0
	case score >= 1:
		return 100
	default:
		return int(score * 100)
	}
}

func summarize(doc models.Document) string {
	if s := processing.CollapseWhitespace(doc.Snippet); s != "" {
		return s
	}
	text := processing.CollapseWhitespace(doc.Text())
	if text == "" {
		return ""
	}
	cut := processing.Truncate(text, summaryChars)
	if cut != text {
		cut += "..."
	}
	return cut
}
