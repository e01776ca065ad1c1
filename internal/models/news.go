package models

import "time"

// NewsDocument is the article shape stored in the local Elasticsearch news index.
type NewsDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	URLs      []string  `json:"urls"`
}

// SearchHit is a raw, unvalidated entry returned by a search backend.
type SearchHit struct {
	Title     string `json:"title"`
	URL       string `json:"link"`
	Published string `json:"date,omitempty"`
	Source    string `json:"source,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// Query is one fully-formed search query. It is built once per run and never mutated.
type Query struct {
	Text    string
	Keyword string
	Recency Recency
}
