package models

import jsoniter "github.com/json-iterator/go"

// MEnvelope is the backend's response wrapper:
// { success, data: T[] | {content: T[]}, message }.
type MEnvelope struct {
	Success *bool               `json:"success"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
}

// MPage is the paged form of the data field.
type MPage struct {
	Content jsoniter.RawMessage `json:"content"`
}

// MErrorBody covers the error shapes the backend answers with on non-2xx.
type MErrorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
	Hint      string `json:"hint"`
}
