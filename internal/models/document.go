package models

// DocState tracks where a Document is in the pipeline. States only move forward.
type DocState int

const (
	StateStub DocState = iota
	StateExtracted
	StateExtractionFailed
	StateScored
	StateSkipScored
	StateRanked
	StateDropped
)

var stateNames = map[DocState]string{
	StateStub:             "stub",
	StateExtracted:        "extracted",
	StateExtractionFailed: "extraction-failed",
	StateScored:           "scored",
	StateSkipScored:       "skip-scored",
	StateRanked:           "ranked",
	StateDropped:          "dropped",
}

func (s DocState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s DocState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// stage orders states; extracted/failed share a stage, as do scored/skip-scored and ranked/dropped.
func (s DocState) stage() int {
	switch s {
	case StateStub:
		return 0
	case StateExtracted, StateExtractionFailed:
		return 1
	case StateScored, StateSkipScored:
		return 2
	default:
		return 3
	}
}

// Document is the unit flowing through extraction, scoring and ranking.
// A nil FullText means extraction has not run or failed.
type Document struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Source    string   `json:"source,omitempty"`
	Published string   `json:"published,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
	FullText  *string  `json:"full_text"`
	Score     float64  `json:"relevance_score"`
	State     DocState `json:"state"`
}

// NewStub promotes a hit into a Document stub.
func NewStub(hit SearchHit) Document {
	return Document{
		URL:       hit.URL,
		Title:     hit.Title,
		Source:    hit.Source,
		Published: hit.Published,
		Snippet:   hit.Snippet,
		State:     StateStub,
	}
}

// Extracted reports whether full text is available.
func (d *Document) Extracted() bool {
	return d.FullText != nil
}

// Text returns the full text or "" when extraction failed.
func (d *Document) Text() string {
	if d.FullText == nil {
		return ""
	}
	return *d.FullText
}

// Advance moves the document to next. It returns false and leaves the document
// untouched when next would re-enter the current or an earlier stage.
func (d *Document) Advance(next DocState) bool {
	if next.stage() <= d.State.stage() {
		return false
	}
	if next == StateScored && d.State == StateExtractionFailed {
		return false
	}
	d.State = next
	return true
}
