package models

// QueryStatus is the active variant of a QueryResult.
type QueryStatus int

const (
	StatusIdle QueryStatus = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s QueryStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

func (s QueryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MQueryResult is the state of one screen's query. Records is only meaningful
// in StatusSuccess; Message and ErrorKind only in StatusFailure.
type MQueryResult[T any] struct {
	Status     QueryStatus `json:"status"`
	Records    []T         `json:"records,omitempty"`
	Message    string      `json:"message,omitempty"`
	ErrorKind  string      `json:"errorKind,omitempty"`
	Generation uint64      `json:"generation"`
}

func (r MQueryResult[T]) IsEmpty() bool {
	return r.Status == StatusSuccess && len(r.Records) == 0
}

// MStateEvent is pushed to a session's open pages when a screen changes state.
type MStateEvent struct {
	Type       string `json:"type"` // "STATE"
	Screen     string `json:"screen"`
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
	Timestamp  int64  `json:"timestamp"`
}
