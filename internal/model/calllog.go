package model

import "time"

// CallLog is one recorded outbound upstream call.
type CallLog struct {
	ID         int64     `json:"id"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
