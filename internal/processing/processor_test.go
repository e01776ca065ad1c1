package processing_test

import (
	"strings"
	"testing"

	"github.com/DeafMist/fed-landscape-radar/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "punctuation", input: "Grants!!!   awarded", want: "Grants awarded"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
		{name: "remove urls", input: "See https://nsf.gov for info", want: "See for info"},
		{name: "entities", input: "R&amp;D policy", want: "R D policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processing.CleanText(tt.input); got != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", processing.CollapseWhitespace("  a\n\tb   c "))
	require.Equal(t, "", processing.CollapseWhitespace(" \n "))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", processing.Truncate("abcdef", 3))
	require.Equal(t, "abc", processing.Truncate("abc", 10))
	require.Equal(t, "", processing.Truncate("abc", 0))
	require.Equal(t, "héé", processing.Truncate("hééllo", 3))

	long := strings.Repeat("x", 2000)
	require.Len(t, processing.Truncate(long, 1024), 1024)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "  ", want: ""},
		{name: "fragment", input: "https://nsf.gov/news/1#top", want: "https://nsf.gov/news/1"},
		{name: "host case", input: " HTTPS://NSF.gov/News ", want: "https://nsf.gov/News"},
		{name: "query kept", input: "https://a.edu/p?id=2", want: "https://a.edu/p?id=2"},
		{name: "not a url", input: "relative/path", want: "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.CanonicalURL(tt.input))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "Grant grant funding funding funding policy and the science"
	got := processing.ExtractKeywords(text, 3, 3)
	require.Equal(t, []string{"funding", "grant", "policy"}, got)

	require.Nil(t, processing.ExtractKeywords("", 5, 3))
}

func TestExtractKeywordsIgnoresURLWords(t *testing.T) {
	text := "grant funding funding https://example.com/tour-deals policy"
	got := processing.ExtractKeywords(text, 3, 3)
	require.ElementsMatch(t, []string{"funding", "grant", "policy"}, got)
}

func TestGenerateTitleFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{name: "empty", text: "", maxWords: 10, want: ""},
		{name: "single sentence", text: "NSF expands AI institutes.", maxWords: 10, want: "NSF expands AI institutes"},
		{name: "multiple sentences", text: "New CHIPS grants announced! Funding starts in May.", maxWords: 10, want: "New CHIPS grants announced"},
		{name: "long text truncated", text: "The department announced a broad package of regional innovation awards today", maxWords: 5, want: "The department announced a broad..."},
		{name: "question mark", text: "Who gets the money? Universities.", maxWords: 10, want: "Who gets the money"},
		{name: "unlimited words", text: "Regional tech hubs named", maxWords: 0, want: "Regional tech hubs named"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.GenerateTitleFromText(tt.text, tt.maxWords))
		})
	}
}
