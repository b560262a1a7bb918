package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call for user messaging. It never changes
// control flow: every kind leaves local state untouched.
type Kind string

const (
	KindInsufficientStock Kind = "insufficient_stock"
	KindSessionExpired    Kind = "session_expired"
	KindPermissionDenied  Kind = "permission_denied"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindServer            Kind = "server"
	KindNetwork           Kind = "network"
	KindUnknown           Kind = "unknown"
)

var ErrEmptyResponse = errors.New("backend returned an empty response")

// APIError is a classified backend failure.
type APIError struct {
	Status  int
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("backend %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Classify maps an HTTP status and server message to a Kind.
func Classify(status int, message string) Kind {
	msg := strings.ToLower(message)
	switch {
	case status < 500 && (strings.Contains(msg, "stock") || strings.Contains(msg, "stok")):
		return KindInsufficientStock
	case status == http.StatusUnauthorized:
		return KindSessionExpired
	case status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf returns the kind of err, or KindUnknown when err is not an APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// UserMessage is the text shown to the cashier for a failed call.
func UserMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Something went wrong, please try again"
	}

	switch apiErr.Kind {
	case KindInsufficientStock:
		return "Insufficient stock: " + apiErr.Message
	case KindSessionExpired:
		return "Session expired, please log in again"
	case KindPermissionDenied:
		return "You do not have permission for this action"
	case KindValidation:
		if apiErr.Message != "" {
			return "Invalid data: " + apiErr.Message
		}
		return "Invalid data"
	case KindNotFound:
		return "Not found"
	case KindServer:
		return "Server error, please try again later"
	case KindNetwork:
		return "Cannot reach the server, check the network connection"
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Something went wrong, please try again"
	}
}
