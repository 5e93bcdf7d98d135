//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/accident-severity/internal/adapter/forest"
	"github.com/couchcryptid/accident-severity/internal/adapter/kafka"
	"github.com/couchcryptid/accident-severity/internal/config"
	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
	"github.com/couchcryptid/accident-severity/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-predictions"

func ptr(f float64) *float64 { return &f }

// TestPredictionEventRoundTrip submits a manual-location form through the
// controller with a real model and reads the published event back from Kafka.
func TestPredictionEventRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	publisher := kafka.NewPublisher(cfg, metrics, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	model, err := forest.Load("../../model/severity_forest.json")
	require.NoError(t, err)
	ctrl := form.NewController(domain.NewClassifier(model), nil, nil, publisher, logger, metrics)

	out := ctrl.Submit(ctx, form.Input{
		Measurements: domain.Measurements{AgeOfDriver: 45, AgeOfVehicle: 2, EngineCC: 600, SpeedLimit: 70},
		Selections: domain.Selections{
			VehicleType: "Motorcycle over 500cc",
			Day:         "Saturday",
			Weather:     "Raining no high winds",
			Light:       "Darkness - lights lit",
			RoadSurface: "Wet or damp",
			Gender:      "Female",
		},
		Method:    form.MethodManual,
		Latitude:  ptr(53.48),
		Longitude: ptr(-2.24),
	})
	require.True(t, out.Succeeded(), out.Message)
	assert.Equal(t, domain.SeveritySevere, out.Prediction.Severity)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read prediction event")

	assert.Equal(t, out.ID, string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Severe", headers["severity"])
	assert.NotEmpty(t, headers["predicted_at"])

	var event domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, out.ID, event.ID)
	assert.Equal(t, domain.SeveritySevere, event.Severity)
	assert.Equal(t, 3, event.Code)
	assert.Equal(t, "manual", event.LocationMethod)
}
