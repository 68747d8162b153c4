package gtindata

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind is the closed set of failure classes a backend call can
// produce. Every non-2xx outcome and every transport failure is mapped
// to exactly one kind before it reaches a caller.
type ErrorKind uint8

const (
	// KindConnection means no HTTP response was received at all
	// (DNS failure, refused connection, timeout). Status is 0.
	KindConnection ErrorKind = iota
	// KindUnauthorized maps HTTP 401. The engine clears the credential
	// store and fires the unauthorized callbacks before returning it.
	KindUnauthorized
	// KindForbidden maps HTTP 403, a plan or permission restriction.
	KindForbidden
	// KindNotFound maps HTTP 404.
	KindNotFound
	// KindValidation maps HTTP 400 and client-side input rejection.
	KindValidation
	// KindRateLimited maps HTTP 429. RetryAfter carries the server
	// hint when one was provided.
	KindRateLimited
	// KindServer maps any other non-2xx status, 5xx included.
	KindServer
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is the only error shape resource methods return for backend
// failures. It is immutable once constructed; callers branch on Kind and
// display Detail (the backend's human-readable message) when present.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Detail is the backend's "detail" field, when the error body
	// carried one. Empty when the body was absent or unparseable.
	Detail string
	// RetryAfter is the server-provided wait hint on rate-limited
	// responses, zero when the server sent none. Informational only;
	// no layer of the client retries on its own.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
}

// UserMessage returns the text a UI should show: the backend detail when
// present, the generic message otherwise.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// AsAPIError unwraps err into an *APIError, returning nil when err is
// not one.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	apiErr := AsAPIError(err)
	return apiErr != nil && apiErr.Kind == kind
}

// IsUnauthorized reports whether err is an unauthorized API error.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a forbidden API error.
func IsForbidden(err error) bool { return IsKind(err, KindForbidden) }

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsRateLimited reports whether err is a rate-limited API error.
func IsRateLimited(err error) bool { return IsKind(err, KindRateLimited) }

// IsConnection reports whether err is a connection-level API error.
func IsConnection(err error) bool { return IsKind(err, KindConnection) }

func connectionError(cause error) *APIError {
	msg := "connection to the backend failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{Kind: KindConnection, Status: 0, Message: msg}
}

func validationError(msg string) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// kindForStatus maps a non-2xx HTTP status to its error kind. The
// mapping is applied in one place only, inside Client.send.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindServer
	}
}

var (
	// ErrBuilderUsed is returned when Build is called twice on the
	// same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrNoBaseURL is returned by Build when no backend origin was
	// configured.
	ErrNoBaseURL = errors.New("base URL required")
	// ErrNoCredentialStore is returned by Build when no credential
	// store was supplied.
	ErrNoCredentialStore = errors.New("credential store required")
)
