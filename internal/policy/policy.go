// Package policy maps model probabilities to discrete risk tiers.
//
// The threshold table is the entire business policy for inline transaction
// approval. Tiers use half-open intervals with the lower bound inclusive, so
// a boundary probability always lands in the upper bucket (0.3 is MEDIUM,
// 0.6 is HIGH, 0.8 is CRITICAL).
package policy

// Level is the discrete risk tier derived from a fraud probability.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Recommendation is the action suggested to downstream approval systems.
type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendReview  Recommendation = "REVIEW"
	RecommendReject  Recommendation = "REJECT"
)

// Tier boundaries. Changing these changes who gets approved.
const (
	MediumThreshold   = 0.3
	HighThreshold     = 0.6
	CriticalThreshold = 0.8
)

// Classify maps a fraud probability in [0,1] to a risk level and
// recommendation. Pure and total: every input produces a verdict, out-of-range
// inputs fall into the nearest edge bucket.
func Classify(probability float64) (Level, Recommendation) {
	switch {
	case probability < MediumThreshold:
		return LevelLow, RecommendApprove
	case probability < HighThreshold:
		return LevelMedium, RecommendReview
	case probability < CriticalThreshold:
		return LevelHigh, RecommendReview
	default:
		return LevelCritical, RecommendReject
	}
}

// IsHighRisk reports whether a level should count toward high-risk tracking.
func IsHighRisk(level Level) bool {
	return level == LevelHigh || level == LevelCritical
}
