package models

import "time"

type NoticeSeverity string

const (
	SeveritySuccess NoticeSeverity = "success"
	SeverityError   NoticeSeverity = "error"
)

// MNotice is a transient notification shown after a fund mutation.
type MNotice struct {
	ID        uint64         `json:"id"`
	Severity  NoticeSeverity `json:"severity"`
	Message   string         `json:"message"`
	ExpiresAt time.Time      `json:"expiresAt"`
}
