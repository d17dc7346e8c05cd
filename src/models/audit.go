package models

import "time"

// MAuditEntry records one submitted query or fund mutation.
type MAuditEntry struct {
	SessionID  string    `json:"session_id"`
	Screen     string    `json:"screen"`
	Action     string    `json:"action"`
	Params     string    `json:"params"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// MHistoryEntry is one recent search kept in a workspace.
type MHistoryEntry struct {
	Screen      string    `json:"screen"`
	Criteria    string    `json:"criteria"`
	Outcome     string    `json:"outcome"`
	SubmittedAt time.Time `json:"submitted_at"`
}
