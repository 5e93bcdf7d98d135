package domain

import (
	"context"
	"errors"
)

// Error kinds surfaced to the form controller. Adapters wrap the underlying
// cause with one of these so callers can classify failures with errors.Is.
var (
	// ErrNetwork is a transport failure reaching an external service.
	ErrNetwork = errors.New("network error")
	// ErrParse is a malformed or unexpected response from an external service.
	ErrParse = errors.New("parse error")
	// ErrLookup is a display label that is not present in a registry.
	ErrLookup = errors.New("lookup error")
	// ErrClassification is a failure inside the model call.
	ErrClassification = errors.New("classification error")

	// ErrValidation is a numeric field outside its permitted bounds.
	ErrValidation = errors.New("validation error")
	// ErrPlaceholder is a choice field left on its "Select ..." entry.
	ErrPlaceholder = errors.New("placeholder selected")
	// ErrMissingCoordinates means no latitude/longitude is available for the vector.
	ErrMissingCoordinates = errors.New("missing coordinates")
)

// ErrorKind returns a short, stable name for the error class of err, used as
// a metric label and in API error bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrLookup):
		return "lookup"
	case errors.Is(err, ErrClassification):
		return "classification"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPlaceholder):
		return "placeholder"
	case errors.Is(err, ErrMissingCoordinates):
		return "missing_coordinates"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
