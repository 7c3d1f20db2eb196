package models

import (
	"time"
)

// Segment is one timed caption unit.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Transcript struct {
	VideoID   string    `json:"video_id"`
	Language  string    `json:"language,omitempty"`
	Segments  []Segment `json:"segments"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsStale reports whether the transcript was fetched longer than ttl ago.
// A non-positive ttl never expires.
func (t *Transcript) IsStale(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(t.FetchedAt) > ttl
}

// TranscriptResponse is the JSON body of a successful API call.
type TranscriptResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}
