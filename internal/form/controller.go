package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/observability"
	"github.com/google/uuid"
)

// Predictor classifies an assembled feature vector.
type Predictor interface {
	Predict(ctx context.Context, v domain.FeatureVector) (domain.Prediction, error)
}

// Publisher emits completed predictions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.PredictionEvent) error
}

// Controller binds form input to the registries, the location resolver and
// the classifier. Every error is converted into a user-facing message on the
// returned Outcome; Submit never fails the caller.
type Controller struct {
	classifier Predictor
	ips        domain.IPResolver
	locator    domain.Locator
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	newID      func() string
}

// NewController creates a Controller. ips and locator may be nil to disable
// dynamic location; publisher may be nil to disable prediction events.
func NewController(classifier Predictor, ips domain.IPResolver, locator domain.Locator, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		classifier: classifier,
		ips:        ips,
		locator:    locator,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		newID:      uuid.NewString,
	}
}

// CheckReadiness returns nil once a classifier is wired.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if c.classifier == nil {
		return errors.New("classifier model is not loaded")
	}
	return nil
}

// DynamicLocationEnabled reports whether the Dynamic location method is available.
func (c *Controller) DynamicLocationEnabled() bool {
	return c.ips != nil && c.locator != nil
}

// ResolveLocation runs the dynamic location lookup on its own, e.g. to preview
// coordinates as soon as the user picks the Dynamic method.
func (c *Controller) ResolveLocation(ctx context.Context) domain.LocationResolution {
	return domain.ResolveLocation(ctx, c.ips, c.locator, c.logger)
}

// Submit runs one submission: translate selections, obtain coordinates
// (manual or dynamic), assemble the vector and classify it.
func (c *Controller) Submit(ctx context.Context, in Input) Outcome {
	s := &submission{c: c, out: Outcome{ID: c.newID(), Method: in.Method}}
	s.enter(StateCollecting)

	method, err := ParseLocationMethod(string(in.Method))
	if err != nil {
		return s.fail(err)
	}
	s.out.Method = method
	c.metrics.Submissions.WithLabelValues(string(method)).Inc()

	// Validate the whole form before any network call is made.
	if err := in.Measurements.Validate(); err != nil {
		return s.fail(err)
	}
	codes, err := in.Selections.Translate()
	if err != nil {
		return s.fail(err)
	}

	var loc *domain.Coordinates
	switch method {
	case MethodManual:
		if in.Latitude == nil || in.Longitude == nil {
			return s.fail(fmt.Errorf("%w: enter both latitude and longitude", domain.ErrMissingCoordinates))
		}
		loc = &domain.Coordinates{Lat: *in.Latitude, Lon: *in.Longitude}
	case MethodDynamic:
		s.enter(StateResolving)
		res := c.ResolveLocation(ctx)
		switch res.Status {
		case domain.LocationNotFound:
			return s.warn("Location not found. Switch to manual location entry.")
		case domain.LocationUnavailable:
			return s.fail(res.Err)
		}
		loc = res.Coordinates
	}
	s.out.Location = loc

	vector, err := domain.NewFeatureVector(in.Measurements, codes, loc)
	if err != nil {
		return s.fail(err)
	}
	s.out.Vector = &vector

	s.enter(StatePredicting)
	if c.classifier == nil {
		return s.fail(fmt.Errorf("%w: no model loaded", domain.ErrClassification))
	}
	pred, err := c.classifier.Predict(ctx, vector)
	if err != nil {
		return s.fail(err)
	}

	return s.succeed(ctx, pred)
}

// submission tracks one pass through the form state machine.
type submission struct {
	c   *Controller
	out Outcome
}

func (s *submission) enter(state State) {
	s.out.States = append(s.out.States, state)
	s.c.logger.Debug("form state", "id", s.out.ID, "state", state)
}

func (s *submission) fail(err error) Outcome {
	s.out.Err = err
	s.out.Kind = domain.ErrorKind(err)
	s.out.Message = userMessage(err)
	s.c.metrics.SubmissionErrors.WithLabelValues(s.out.Kind).Inc()
	s.c.logger.Warn("submission failed", "id", s.out.ID, "method", s.out.Method, "kind", s.out.Kind, "error", err)
	s.enter(StateCollecting)
	return s.out
}

func (s *submission) warn(msg string) Outcome {
	s.out.Warning = msg
	s.out.Message = msg
	s.c.logger.Info("submission needs manual location", "id", s.out.ID)
	s.enter(StateCollecting)
	return s.out
}

func (s *submission) succeed(ctx context.Context, pred domain.Prediction) Outcome {
	s.out.Prediction = &pred
	s.out.Message = "Predicted Severity: " + pred.Severity.String()
	s.c.metrics.Predictions.WithLabelValues(pred.Severity.String()).Inc()
	s.c.logger.Info("prediction complete", "id", s.out.ID, "method", s.out.Method, "severity", pred.Severity, "code", pred.Code)

	if s.c.publisher != nil {
		event := domain.PredictionEvent{
			ID:             s.out.ID,
			Severity:       pred.Severity,
			Code:           pred.Code,
			LocationMethod: string(s.out.Method),
			PredictedAt:    pred.PredictedAt,
		}
		if err := s.c.publisher.Publish(ctx, event); err != nil {
			s.c.logger.Warn("publish prediction event failed", "id", s.out.ID, "error", err)
		}
	}

	s.enter(StateCollecting)
	return s.out
}

// userMessage turns an error into the text shown next to the form.
func userMessage(err error) string {
	detail := strings.ReplaceAll(err.Error(), "\n", "; ")
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled before a prediction was made."
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrParse):
		return "Could not determine your location automatically (" + detail + "). Switch to manual location entry."
	case errors.Is(err, domain.ErrClassification):
		return "Prediction failed: " + detail
	default:
		return "Please correct the form: " + detail
	}
}
