package form

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/accident-severity/internal/domain"
)

// LocationMethod selects where the submission's coordinates come from.
type LocationMethod string

const (
	MethodManual  LocationMethod = "manual"
	MethodDynamic LocationMethod = "dynamic"
)

// ParseLocationMethod accepts "manual" or "dynamic" in any case. An empty
// value means manual, matching the form's default toggle position.
func ParseLocationMethod(s string) (LocationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MethodManual):
		return MethodManual, nil
	case string(MethodDynamic):
		return MethodDynamic, nil
	default:
		return "", fmt.Errorf("%w: unknown location method %q", domain.ErrValidation, s)
	}
}

// State is a step of the form state machine.
type State string

const (
	StateCollecting State = "collecting"
	StateResolving  State = "resolving"
	StatePredicting State = "predicting"
)

// Input is one form submission. Latitude and Longitude are only read in
// manual mode.
type Input struct {
	domain.Measurements
	domain.Selections

	Method    LocationMethod
	Latitude  *float64
	Longitude *float64
}

// Outcome is what the form renders after a submission.
type Outcome struct {
	ID         string
	Method     LocationMethod
	Prediction *domain.Prediction
	Vector     *domain.FeatureVector
	Location   *domain.Coordinates

	// Message is the single line shown to the user: the predicted severity,
	// a warning, or an error description.
	Message string
	Warning string
	Err     error
	Kind    string

	// States is the path taken through the state machine.
	States []State
}

// Succeeded reports whether a severity was predicted.
func (o Outcome) Succeeded() bool {
	return o.Prediction != nil
}
