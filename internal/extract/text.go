package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/DeafMist/fed-landscape-radar/internal/processing"
)

// DefaultMinParagraphChars is the paragraph text length below which the body
// text is used instead.
const DefaultMinParagraphChars = 200

// ErrNoText means the page parsed but yielded no text at all.
var ErrNoText = errors.New("no text extracted")

// Text is the result of extracting one page.
type Text struct {
	Body     string
	Fallback bool
}

// ExtractText joins the text of every <p> element. When that is shorter than
// minChars it falls back to all text under <body>.
func ExtractText(page string, minChars int) (Text, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Text{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, template, svg").Remove()

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := processing.CollapseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	paragraphs := strings.Join(parts, " ")
	if utf8.RuneCountInString(paragraphs) >= minChars && paragraphs != "" {
		return Text{Body: paragraphs}, nil
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	body := spacedText(root)
	if body != "" {
		return Text{Body: body, Fallback: true}, nil
	}
	if paragraphs != "" {
		return Text{Body: paragraphs}, nil
	}
	return Text{}, ErrNoText
}

// spacedText collects every text node under sel separated by single spaces,
// so adjacent block elements do not run together.
func spacedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return processing.CollapseWhitespace(strings.Join(parts, " "))
}
