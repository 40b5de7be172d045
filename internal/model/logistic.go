package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/mbd888/riskscore/internal/features"
)

// LogisticModel evaluates a standardized logistic regression. All state is
// fixed at load time, so concurrent Predict calls need no synchronization.
type LogisticModel struct {
	intercept float64
	weights   []float64
	means     []float64
	stddevs   []float64
}

// Load reads a serialized predictor artifact from disk. Only the "logistic"
// artifact type is supported by this build.
func Load(path string) (Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}

	if art.Type != "logistic" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, art.Type)
	}
	if err := art.validate(features.NumFeatures); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	m := &LogisticModel{
		intercept: art.Intercept,
		weights:   art.Weights,
		means:     art.Means,
		stddevs:   art.Stddevs,
	}
	return m, nil
}

// Predict returns the fraud probability for a fixed-order feature vector.
func (m *LogisticModel) Predict(_ context.Context, vector []float64) (float64, error) {
	if len(vector) != len(m.weights) {
		return 0, fmt.Errorf("%w: got %d, expected %d", ErrVectorSize, len(vector), len(m.weights))
	}

	z := m.intercept
	for i, x := range vector {
		if len(m.means) != 0 {
			x = (x - m.means[i]) / m.stddevs[i]
		}
		z += m.weights[i] * x
	}

	p := 1.0 / (1.0 + math.Exp(-z))
	// Guard against float drift at the extremes
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}
