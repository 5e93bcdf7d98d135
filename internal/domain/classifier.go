package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Model is a loaded, read-only classifier artifact. Predict returns the raw
// class code for one input row.
type Model interface {
	Predict(features []float64) (int, error)
}

// Prediction is the classifier's answer for one FeatureVector.
type Prediction struct {
	Severity    Severity
	Code        int
	PredictedAt time.Time
}

// Classifier adapts a Model to FeatureVectors. It adds no scaling or
// validation of its own; the vector is passed to the model unchanged.
type Classifier struct {
	model Model
}

// NewClassifier wraps a model that was loaded once at startup.
func NewClassifier(model Model) *Classifier {
	return &Classifier{model: model}
}

// Predict runs the model and maps the raw code to a Severity. Model failures
// are returned wrapped in ErrClassification.
func (c *Classifier) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	if c.model == nil {
		return Prediction{}, fmt.Errorf("%w: no model loaded", ErrClassification)
	}
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	code, err := c.model.Predict(v.Values())
	if err != nil {
		if errors.Is(err, ErrClassification) {
			return Prediction{}, err
		}
		return Prediction{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	return Prediction{
		Severity:    SeverityFromCode(code),
		Code:        code,
		PredictedAt: clock.Now().UTC(),
	}, nil
}
