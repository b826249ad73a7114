package driven

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the backend API client and by
// client-side validation. Callers branch on the kind, never on message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuthentication: the token was missing, expired or rejected (HTTP 401).
	KindAuthentication
	// KindProtocol: the backend answered with something other than JSON.
	KindProtocol
	// KindAPI: a well-formed JSON error from the backend.
	KindAPI
	// KindConnectivity: the backend host could not be reached.
	KindConnectivity
	// KindValidation: a required field check failed before any network call.
	KindValidation
)

// String returns the short name of the kind, used in logs and metrics labels.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindProtocol:
		return "protocol"
	case KindAPI:
		return "api"
	case KindConnectivity:
		return "connectivity"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *Error matches the sentinel of its kind.
var (
	ErrAuthentication = errors.New("authentication required")
	ErrProtocol       = errors.New("unexpected response format")
	ErrAPI            = errors.New("backend error")
	ErrConnectivity   = errors.New("backend unreachable")
	ErrValidation     = errors.New("validation failed")
)

// ErrEncryptionKeyNotSet is returned by KVStore operations when
// SENTRYSITE_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set SENTRYSITE_SECRET_KEY")

// Error is the typed failure returned by the API client and validators.
type Error struct {
	Kind     ErrorKind
	Endpoint string            // Backend endpoint, empty for validation errors.
	Status   int               // HTTP status when one was received.
	Message  string            // Human-readable, safe to render inline.
	Fields   map[string]string // Per-field messages for KindValidation.
	Err      error             // Underlying cause, if any.
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel so callers can write errors.Is(err, driven.ErrAuthentication).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrAPI:
		return e.Kind == KindAPI
	case ErrConnectivity:
		return e.Kind == KindConnectivity
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether repeating the same request may succeed: the
// backend was unreachable or failed with a 5xx.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindConnectivity || (e.Kind == KindAPI && e.Status >= 500)
}

// MessageOf returns the display message for err. For *Error it is the
// message passed through verbatim; for anything else it is err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// NewValidationError builds a KindValidation error from per-field messages.
func NewValidationError(fields map[string]string) *Error {
	msg := "please fill in all required fields"
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}
