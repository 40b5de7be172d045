// Package scoring orchestrates the real-time risk assessment pipeline.
//
// One call, one verdict: validate the feature payload, run the predictor,
// map the probability to a risk tier, record the decision in the audit trail,
// update metrics, and hand back a response the caller can act on inline.
// Either the full success path completes (metrics + audit entry + response)
// or the failure short-circuits before the audit entry is written — there is
// no partial decision record.
package scoring

import (
	"errors"
	"time"

	"github.com/mbd888/riskscore/internal/features"
	"github.com/mbd888/riskscore/internal/policy"
)

// ErrPredictorUnavailable is returned when scoring is attempted before the
// model has been loaded. The readiness probe should have kept traffic away.
var ErrPredictorUnavailable = errors.New("predictor not loaded")

// Request is a single transaction submitted for scoring. Field presence is
// checked by the service so that every field error, missing or out of bounds,
// flows through one validation taxonomy.
type Request struct {
	TransactionID string            `json:"transactionId"`
	Features      *features.Payload `json:"features"`
	CustomerID    string            `json:"customerId,omitempty"`
}

// Result is the assessment returned to the caller. A copy of its decision
// fields also feeds the audit trail.
type Result struct {
	TransactionID    string                `json:"transactionId"`
	RiskScore        float64               `json:"riskScore"`
	RiskLevel        policy.Level          `json:"riskLevel"`
	Recommendation   policy.Recommendation `json:"recommendation"`
	ModelVersion     string                `json:"modelVersion"`
	Timestamp        time.Time             `json:"timestamp"`
	CorrelationID    string                `json:"correlationId"`
	FeaturesHash     string                `json:"featuresHash"`
	ProcessingTimeMs float64               `json:"processingTimeMs"`
}
