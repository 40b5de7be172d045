// Package model defines the predictor contract and loads trained artifacts.
//
// The service treats the classifier as an opaque capability: a loaded
// Predictor maps a fixed-order 7-feature vector to a fraud probability in
// [0,1]. Artifacts are produced offline by the training pipeline and loaded
// exactly once at startup; a load failure is fatal, the service never accepts
// scoring traffic without a model.
package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrVectorSize is returned when the input vector does not match the
	// feature layout the model was trained on.
	ErrVectorSize = errors.New("feature vector has wrong dimension")

	// ErrUnsupportedType is returned for artifacts this build cannot evaluate.
	ErrUnsupportedType = errors.New("unsupported model type")
)

// Predictor estimates the probability that a transaction is fraudulent.
// Implementations are read-only after construction and safe for concurrent
// use by any number of request handlers.
type Predictor interface {
	// Predict returns P(fraud) in [0,1] for a fixed-order feature vector.
	Predict(ctx context.Context, vector []float64) (float64, error)
}

// artifact is the on-disk JSON envelope for trained models.
type artifact struct {
	Type      string    `json:"type"`
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	Means     []float64 `json:"means,omitempty"`
	Stddevs   []float64 `json:"stddevs,omitempty"`
}

func (a *artifact) validate(numFeatures int) error {
	if len(a.Weights) != numFeatures {
		return fmt.Errorf("artifact has %d weights, expected %d", len(a.Weights), numFeatures)
	}
	if (len(a.Means) == 0) != (len(a.Stddevs) == 0) {
		return errors.New("artifact means and stddevs must be provided together")
	}
	if len(a.Means) != 0 && len(a.Means) != numFeatures {
		return fmt.Errorf("artifact has %d means, expected %d", len(a.Means), numFeatures)
	}
	if len(a.Stddevs) != 0 && len(a.Stddevs) != numFeatures {
		return fmt.Errorf("artifact has %d stddevs, expected %d", len(a.Stddevs), numFeatures)
	}
	for i, sd := range a.Stddevs {
		if sd <= 0 {
			return fmt.Errorf("artifact stddev[%d] must be positive, got %v", i, sd)
		}
	}
	return nil
}
