package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mbd888/riskscore/internal/audit"
	"github.com/mbd888/riskscore/internal/logging"
	"github.com/mbd888/riskscore/internal/metrics"
	"github.com/mbd888/riskscore/internal/model"
	"github.com/mbd888/riskscore/internal/policy"
	"github.com/mbd888/riskscore/internal/traces"
	"github.com/mbd888/riskscore/internal/validation"
)

// Service scores transactions against the loaded predictor. The predictor,
// trail, and version stamp are fixed at construction; every field is safe to
// share across concurrent request handlers.
type Service struct {
	predictor    model.Predictor
	trail        *audit.Trail
	modelVersion string
	environment  string
}

// NewService creates a scoring service. A nil predictor is allowed so the
// server can come up before load completes; scoring calls fail with
// ErrPredictorUnavailable until a real predictor is wired in.
func NewService(predictor model.Predictor, trail *audit.Trail, modelVersion, environment string) *Service {
	return &Service{
		predictor:    predictor,
		trail:        trail,
		modelVersion: modelVersion,
		environment:  environment,
	}
}

// Ready reports whether the service has a predictor and can score.
func (s *Service) Ready() bool {
	return s.predictor != nil
}

// Score runs the full assessment pipeline for one transaction.
//
// Failure semantics: every attempt increments exactly one outcome counter.
// Validation failures and predictor errors short-circuit before the audit
// append, so the trail only ever holds completed decisions.
func (s *Service) Score(ctx context.Context, req *Request, correlationID string) (*Result, error) {
	start := time.Now()

	ctx, span := traces.StartSpan(ctx, "scoring.Score",
		traces.TransactionID(req.TransactionID),
		traces.CorrelationID(correlationID),
		traces.ModelVersion(s.modelVersion),
	)
	defer span.End()

	if s.predictor == nil {
		metrics.ScoresTotal.WithLabelValues(s.modelVersion, metrics.RiskLevelError, metrics.StatusError).Inc()
		return nil, ErrPredictorUnavailable
	}

	if errs := s.validate(req); len(errs) > 0 {
		metrics.ScoresTotal.WithLabelValues(s.modelVersion, metrics.RiskLevelError, metrics.StatusValidationError).Inc()
		logging.L(ctx).Warn("scoring request rejected",
			"transaction_id", req.TransactionID,
			"error", errs.Error(),
		)
		return nil, errs
	}

	feats := req.Features.Features()
	vector := feats.Vector()
	featuresHash := feats.Hash()

	predictStart := time.Now()
	probability, err := s.predictor.Predict(ctx, vector)
	metrics.ScoreLatency.WithLabelValues(s.modelVersion).Observe(time.Since(predictStart).Seconds())
	if err != nil {
		metrics.ScoresTotal.WithLabelValues(s.modelVersion, metrics.RiskLevelError, metrics.StatusError).Inc()
		logging.L(ctx).Error("prediction failed",
			"transaction_id", req.TransactionID,
			"error", err,
		)
		return nil, fmt.Errorf("predict: %w", err)
	}

	level, recommendation := policy.Classify(probability)
	span.SetAttributes(traces.RiskLevel(string(level)), traces.RiskScore(probability))

	metrics.ScoresTotal.WithLabelValues(s.modelVersion, string(level), metrics.StatusSuccess).Inc()
	if policy.IsHighRisk(level) {
		metrics.RecordHighRisk()
	}

	now := time.Now().UTC()
	s.trail.Append(&audit.Entry{
		Timestamp:      now,
		TransactionID:  req.TransactionID,
		CustomerID:     req.CustomerID,
		RiskScore:      probability,
		RiskLevel:      level,
		Recommendation: recommendation,
		ModelVersion:   s.modelVersion,
		Environment:    s.environment,
		CorrelationID:  correlationID,
	})

	logging.L(ctx).Info("transaction scored",
		"transaction_id", req.TransactionID,
		"risk_score", round(probability, 4),
		"risk_level", level,
		"recommendation", recommendation,
	)

	return &Result{
		TransactionID:    req.TransactionID,
		RiskScore:        round(probability, 4),
		RiskLevel:        level,
		Recommendation:   recommendation,
		ModelVersion:     s.modelVersion,
		Timestamp:        now,
		CorrelationID:    correlationID,
		FeaturesHash:     featuresHash,
		ProcessingTimeMs: round(float64(time.Since(start).Microseconds())/1000.0, 2),
	}, nil
}

// validate covers the request envelope, field presence, and every feature
// bound. A missing features object or field is an error, never a zero value.
func (s *Service) validate(req *Request) validation.ValidationErrors {
	var errs validation.ValidationErrors
	if ve := validation.Required("transactionId", req.TransactionID); ve != nil {
		errs = append(errs, *ve)
	}
	if req.Features == nil {
		return append(errs, validation.ValidationError{
			Field: "features", Message: "is required",
		})
	}
	return append(errs, req.Features.Validate()...)
}

func round(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
