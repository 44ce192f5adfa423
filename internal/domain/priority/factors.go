// Package priority computes a weighted, explainable priority score per
// work item and ranks a backlog.
package priority

import (
	"fmt"

	"github.com/okian/flowboard/internal/domain/model"
)

// Blocked penalty values.
const (
	noPenalty      = 0.0
	blockedPenalty = 0.5
)

// Factors are the four normalized inputs combined into a priority score,
// plus the blocked penalty and an overall confidence in the inputs.
type Factors struct {
	CustomerValue      float64 `json:"customer_value"`
	UnblockImpact      float64 `json:"unblock_impact"`
	WorkerAvailability float64 `json:"worker_availability"`
	LearningValue      float64 `json:"learning_value"`
	BlockedPenalty     float64 `json:"blocked_penalty"`
	Confidence         float64 `json:"confidence"`
}

// NewFactors validates and constructs a factor set. Every factor must be
// in [0,1] and the blocked penalty must be 0 or 0.5.
func NewFactors(customerValue, unblockImpact, workerAvailability, learningValue, penalty, confidence float64) (Factors, error) {
	for name, v := range map[string]float64{
		"customer_value":      customerValue,
		"unblock_impact":      unblockImpact,
		"worker_availability": workerAvailability,
		"learning_value":      learningValue,
		"confidence":          confidence,
	} {
		if v < 0 || v > 1 {
			return Factors{}, fmt.Errorf("%s %v out of [0,1]: %w", name, v, model.ErrValidation)
		}
	}
	if penalty != noPenalty && penalty != blockedPenalty {
		return Factors{}, fmt.Errorf("blocked_penalty %v must be 0 or 0.5: %w", penalty, model.ErrValidation)
	}
	return Factors{
		CustomerValue:      customerValue,
		UnblockImpact:      unblockImpact,
		WorkerAvailability: workerAvailability,
		LearningValue:      learningValue,
		BlockedPenalty:     penalty,
		Confidence:         confidence,
	}, nil
}

// Category bands a score into a coarse priority class.
type Category string

// Priority categories, highest first.
const (
	CategoryCritical Category = "critical"
	CategoryHigh     Category = "high"
	CategoryMedium   Category = "medium"
	CategoryLow      Category = "low"
)

// Category band thresholds, checked highest first.
const (
	criticalThreshold = 0.90
	highThreshold     = 0.70
	mediumThreshold   = 0.40
)

// Categorize maps a score to its category band.
func Categorize(score float64) Category {
	switch {
	case score >= criticalThreshold:
		return CategoryCritical
	case score >= highThreshold:
		return CategoryHigh
	case score >= mediumThreshold:
		return CategoryMedium
	default:
		return CategoryLow
	}
}
