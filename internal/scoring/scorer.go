// Package scoring implements the moderation decision model. The model is a
// frozen logistic regression: coefficients are baked in rather than loaded
// from a registry, so scoring stays a pure in-process function.
package scoring

import (
	"math"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/domain/model"
)

// Feature scaling applied before the linear term, matching the training
// pipeline: images/10, description length/1000, category/100.
const (
	imagesScale      = 10.0
	descriptionScale = 1000.0
	categoryScale    = 100.0
)

// LogisticScorer scores listings with fixed logistic-regression weights.
//
// The decision surface encodes the listing policy: verified sellers are never
// flagged, unverified listings without a single image are flagged, and any
// image clears an unverified listing. Description length and category only
// nudge the reported probability.
type LogisticScorer struct {
	intercept   float64
	verified    float64
	images      float64
	description float64
	category    float64
	threshold   float64
}

// NewLogisticScorer returns a scorer with the frozen production weights.
func NewLogisticScorer() *LogisticScorer {
	return &LogisticScorer{
		intercept:   4.0,
		verified:    -12.0,
		images:      -80.0,
		description: -0.05,
		category:    -0.02,
		threshold:   0.5,
	}
}

// Score computes the violation decision and probability for the features.
// Pure and deterministic; the error return exists only to satisfy the
// collaborator contract and is always nil here.
func (s *LogisticScorer) Score(f core.Features) (model.Decision, error) {
	z := s.intercept +
		s.verified*boolFeature(f.IsVerifiedSeller) +
		s.images*(float64(f.ImagesQty)/imagesScale) +
		s.description*(float64(f.DescriptionLength)/descriptionScale) +
		s.category*(float64(f.Category)/categoryScale)

	p := sigmoid(z)
	return model.Decision{
		IsViolation: p >= s.threshold,
		Probability: p,
	}, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

var _ core.Scorer = (*LogisticScorer)(nil)
