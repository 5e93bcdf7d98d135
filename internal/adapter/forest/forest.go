// Package forest loads tree-ensemble classifiers exported from the training
// pipeline and evaluates them in-process.
//
// The artifact is a JSON document:
//
//	{
//	  "format": "tree-ensemble/v1",
//	  "n_features": 12,
//	  "classes": [1, 2, 3],
//	  "feature_names": ["age_of_driver", ...],
//	  "trees": [{"nodes": [...]}, ...]
//	}
//
// Each node is either a split (feature, threshold, left, right) or a leaf
// (left == right == -1) carrying one weight per class. Splits follow the
// scikit-learn convention: x[feature] <= threshold goes left. A prediction
// averages the normalised leaf weights of every tree and returns the class
// with the highest mean; ties resolve to the first class in "classes".
package forest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Format is the only artifact format this package reads.
const Format = "tree-ensemble/v1"

const leaf = -1

// Node is one node of a decision tree.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"` // per-class weights, leaves only
}

// Tree is a flattened decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Metadata describes where an artifact came from. It is informational only.
type Metadata struct {
	Source      string `json:"source,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

// Ensemble is a loaded tree ensemble. It is immutable after Load and safe for
// concurrent use.
type Ensemble struct {
	Format       string    `json:"format"`
	NFeatures    int       `json:"n_features"`
	Classes      []int     `json:"classes"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Trees        []Tree    `json:"trees"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// Load reads and validates an artifact from path.
func Load(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	e, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return e, nil
}

// Decode reads and validates an artifact from r.
func Decode(r io.Reader) (*Ensemble, error) {
	var e Ensemble
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate checks the structural invariants Predict relies on: every split
// references an existing feature and child, every leaf has one weight per
// class and no tree contains a cycle.
func (e *Ensemble) Validate() error {
	if e.Format != Format {
		return fmt.Errorf("unsupported model format %q, want %q", e.Format, Format)
	}
	if e.NFeatures <= 0 {
		return errors.New("n_features must be positive")
	}
	if len(e.Classes) == 0 {
		return errors.New("classes must not be empty")
	}
	if len(e.FeatureNames) != 0 && len(e.FeatureNames) != e.NFeatures {
		return fmt.Errorf("feature_names has %d entries, n_features is %d", len(e.FeatureNames), e.NFeatures)
	}
	if len(e.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for i, t := range e.Trees {
		if err := e.validateTree(t); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (e *Ensemble) validateTree(t Tree) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	// Children must point forward, which rules out cycles.
	for i, n := range t.Nodes {
		if n.Left == leaf && n.Right == leaf {
			if len(n.Value) != len(e.Classes) {
				return fmt.Errorf("leaf %d has %d weights, want %d", i, len(n.Value), len(e.Classes))
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= e.NFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, e.NFeatures)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d has NaN threshold", i)
		}
	}
	return nil
}

// Predict returns the class code for one input row.
func (e *Ensemble) Predict(features []float64) (int, error) {
	if len(features) != e.NFeatures {
		return 0, fmt.Errorf("model expects %d features, got %d", e.NFeatures, len(features))
	}
	for i, v := range features {
		if math.IsNaN(v) {
			return 0, fmt.Errorf("feature %d is NaN", i)
		}
	}

	votes := make([]float64, len(e.Classes))
	for _, t := range e.Trees {
		weights := t.leafFor(features).Value
		var total float64
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			continue
		}
		for c, w := range weights {
			votes[c] += w / total
		}
	}

	best := 0
	for c := 1; c < len(votes); c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return e.Classes[best], nil
}

func (t Tree) leafFor(features []float64) Node {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == leaf && n.Right == leaf {
			return n
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
