package models

import "time"

// ReportRequest asks for one pipeline run and a delivered report.
type ReportRequest struct {
	RunID          string   `json:"run_id,omitempty"`
	RecipientEmail string   `json:"recipient_email"`
	Keywords       []string `json:"selected_keywords"`
	DateFilter     string   `json:"date_filter"`
}

// Report is the message handed to the downstream delivery consumer.
type Report struct {
	RunID       string     `json:"run_id"`
	Recipient   string     `json:"recipient,omitempty"`
	Subject     string     `json:"subject"`
	Status      string     `json:"status"`
	Body        string     `json:"body"`
	Documents   []Document `json:"documents"`
	GeneratedAt time.Time  `json:"generated_at"`
}
