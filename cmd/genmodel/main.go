// Command genmodel writes a small deterministic tree ensemble in the format
// read by the forest adapter. It is a development stand-in for a trained
// artifact so the service and its tests can run without the training data.
//
// Usage:
//
//	go run ./cmd/genmodel -out model/severity_forest.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/accident-severity/internal/adapter/forest"
	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Feature indices in the model vector.
const (
	featVehicleType = 1
	featLight       = 6
	featSpeedLimit  = 9
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "model/severity_forest.json", "output path for the model artifact")
	flag.Parse()

	// Fixed clock so regenerating the artifact produces identical bytes.
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	e := devEnsemble(clock)
	if err := e.Validate(); err != nil {
		return fmt.Errorf("generated model is invalid: %w", err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil { //nolint:gosec // model artifact is not secret
		return fmt.Errorf("write %s: %w", *out, err)
	}

	fmt.Printf("wrote %s (%d trees)\n", *out, len(e.Trees))
	return nil
}

// devEnsemble votes Severe for fast roads and small two-wheelers, Moderate
// for darkness and Safe otherwise.
func devEnsemble(clock clockwork.Clock) *forest.Ensemble {
	names := domain.FeatureNames
	return &forest.Ensemble{
		Format:       forest.Format,
		NFeatures:    domain.FeatureCount,
		Classes:      []int{1, 2, 3},
		FeatureNames: names[:],
		Trees: []forest.Tree{
			{Nodes: []forest.Node{
				split(featSpeedLimit, 40, 1, 2),
				split(featLight, 1.5, 3, 4),
				leafNode(1, 3, 6),
				leafNode(8, 1, 1),
				leafNode(2, 6, 2),
			}},
			{Nodes: []forest.Node{
				split(featVehicleType, 5.5, 1, 2),
				leafNode(1, 2, 7),
				leafNode(6, 3, 1),
			}},
		},
		Metadata: &forest.Metadata{
			Source:      "cmd/genmodel",
			GeneratedAt: clock.Now().UTC().Format(time.RFC3339),
		},
	}
}

func split(feature int, threshold float64, left, right int) forest.Node {
	return forest.Node{Feature: feature, Threshold: threshold, Left: left, Right: right}
}

func leafNode(weights ...float64) forest.Node {
	return forest.Node{Left: -1, Right: -1, Value: weights}
}
