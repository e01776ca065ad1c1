package models

import (
	"fmt"
	"strings"
	"time"
)

// Recency restricts search results to a time window.
type Recency int

const (
	RecencyUnbounded Recency = iota
	RecencyDay
	RecencyWeek
	RecencyMonth
)

// DefaultRecency matches the weekly digest cadence.
const DefaultRecency = RecencyWeek

// ParseRecency accepts either the long name ("week") or the search code ("w").
// An empty value yields DefaultRecency.
func ParseRecency(raw string) (Recency, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultRecency, nil
	case "d", "day":
		return RecencyDay, nil
	case "w", "week":
		return RecencyWeek, nil
	case "m", "month":
		return RecencyMonth, nil
	case "all", "any", "unbounded", "none":
		return RecencyUnbounded, nil
	default:
		return DefaultRecency, fmt.Errorf("unknown recency %q", raw)
	}
}

// Code returns the single-letter window code used by search backends; empty for unbounded.
func (r Recency) Code() string {
	switch r {
	case RecencyDay:
		return "d"
	case RecencyWeek:
		return "w"
	case RecencyMonth:
		return "m"
	default:
		return ""
	}
}

func (r Recency) String() string {
	switch r {
	case RecencyDay:
		return "day"
	case RecencyWeek:
		return "week"
	case RecencyMonth:
		return "month"
	default:
		return "unbounded"
	}
}

// Window is the look-back duration of the filter; zero means unbounded.
func (r Recency) Window() time.Duration {
	switch r {
	case RecencyDay:
		return 24 * time.Hour
	case RecencyWeek:
		return 7 * 24 * time.Hour
	case RecencyMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

func (r Recency) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Recency) UnmarshalText(data []byte) error {
	parsed, err := ParseRecency(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
