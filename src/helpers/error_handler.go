package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"trade-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Error Kinds
// -----------------------------------------------------------------------------

type ErrorKind int

const (
	// KindValidation: client-side, raised before any network call.
	KindValidation ErrorKind = iota
	// KindTransport: unreachable backend, non-2xx, success:false or malformed body.
	KindTransport
	// KindAuth: HTTP 401 from the backend.
	KindAuth
	// KindPayloadParse: malformed JSON inside a display payload.
	KindPayloadParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindPayloadParse:
		return "payload_parse"
	}
	return "unknown"
}

const (
	AuthMessage        = "Your session has expired. Please sign in again."
	UnreachableMessage = "Failed to reach the trade service."
)

// -----------------------------------------------------------------------------
// Custom Error Type
// -----------------------------------------------------------------------------

// DashboardError is the single error type surfaced by the query pipeline.
type DashboardError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Cause      error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown on the screen.
func (e *DashboardError) UserMessage() string {
	if e.Kind == KindAuth {
		return AuthMessage
	}
	return e.Message
}

// -----------------------------------------------------------------------------

func NewValidationError(message string) *DashboardError {
	return &DashboardError{Kind: KindValidation, Message: message}
}

func NewTransportError(message string, status int, cause error) *DashboardError {
	if message == "" {
		if status > 0 {
			message = fmt.Sprintf("Request failed with status %d", status)
		} else {
			message = UnreachableMessage
		}
	}
	return &DashboardError{Kind: KindTransport, Message: message, StatusCode: status, Cause: cause}
}

func NewAuthError(cause error) *DashboardError {
	return &DashboardError{Kind: KindAuth, Message: AuthMessage, StatusCode: 401, Cause: cause}
}

func NewPayloadParseError(cause error) *DashboardError {
	return &DashboardError{Kind: KindPayloadParse, Message: "Payload is not valid JSON", Cause: cause}
}

// -----------------------------------------------------------------------------

// AsDashboardError classifies any error. Errors that are not already a
// DashboardError are treated as transport failures.
func AsDashboardError(err error) *DashboardError {
	if err == nil {
		return nil
	}
	var de *DashboardError
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransportError("The trade service did not respond in time.", 0, err)
	}
	return NewTransportError("", 0, err)
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind ErrorKind) bool {
	de := AsDashboardError(err)
	return de != nil && de.Kind == kind
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs errors at a level that matches their kind and keeps
// per-kind counts.
type ErrorHandler struct {
	Logger *logger.Logger
	mu     sync.Mutex
	counts map[ErrorKind]int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log,
		counts: make(map[ErrorKind]int),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, where string) {
	if err == nil {
		return
	}
	de := AsDashboardError(err)

	e.mu.Lock()
	e.counts[de.Kind]++
	e.mu.Unlock()

	switch de.Kind {
	case KindValidation, KindPayloadParse:
		e.Logger.Debug("%s: %v", where, de)
	case KindAuth:
		e.Logger.Warning("%s: %v", where, de)
	default:
		e.Logger.Error("%s: %v", where, de)
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Count(kind ErrorKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[kind]
}
