package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admarket/moderation/internal/core"
)

func TestScore_VerifiedSellerNeverFlagged(t *testing.T) {
	s := NewLogisticScorer()

	tests := []struct {
		name     string
		features core.Features
	}{
		{"no images", core.Features{IsVerifiedSeller: true, ImagesQty: 0, DescriptionLength: 10, Category: 1}},
		{"some images", core.Features{IsVerifiedSeller: true, ImagesQty: 5, DescriptionLength: 500, Category: 50}},
		{"empty description", core.Features{IsVerifiedSeller: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.Score(tt.features)
			require.NoError(t, err)
			assert.False(t, d.IsViolation)
			assert.Less(t, d.Probability, 0.5)
		})
	}
}

func TestScore_UnverifiedWithoutImagesFlagged(t *testing.T) {
	s := NewLogisticScorer()

	tests := []struct {
		name     string
		features core.Features
	}{
		{"bare listing", core.Features{ImagesQty: 0, DescriptionLength: 1, Category: 1}},
		{"long description", core.Features{ImagesQty: 0, DescriptionLength: 5000, Category: 1}},
		{"high category", core.Features{ImagesQty: 0, DescriptionLength: 100, Category: 999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.Score(tt.features)
			require.NoError(t, err)
			assert.True(t, d.IsViolation)
			assert.GreaterOrEqual(t, d.Probability, 0.5)
		})
	}
}

func TestScore_AnyImageClearsUnverifiedListing(t *testing.T) {
	s := NewLogisticScorer()

	for _, qty := range []int{1, 2, 10} {
		d, err := s.Score(core.Features{ImagesQty: qty, DescriptionLength: 50, Category: 12})
		require.NoError(t, err)
		assert.False(t, d.IsViolation, "images_qty=%d", qty)
		assert.Less(t, d.Probability, 0.5)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := NewLogisticScorer()
	f := core.Features{IsVerifiedSeller: false, ImagesQty: 2, DescriptionLength: 250, Category: 33}

	first, err := s.Score(f)
	require.NoError(t, err)
	second, err := s.Score(f)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScore_ProbabilityBounds(t *testing.T) {
	s := NewLogisticScorer()

	for _, f := range []core.Features{
		{},
		{IsVerifiedSeller: true, ImagesQty: 100, DescriptionLength: 100000, Category: 10000},
		{ImagesQty: 0, DescriptionLength: 0, Category: 0},
	} {
		d, err := s.Score(f)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Probability, 0.0)
		assert.LessOrEqual(t, d.Probability, 1.0)
	}
}
