// internal/scoring/review_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewAdjustmentInvalidRating(t *testing.T) {
	assert.Equal(t, 0.0, ReviewAdjustment(ReviewStats{AverageRating: 0, TotalCount: 500, CountKnown: true}))
	assert.Equal(t, 0.0, ReviewAdjustment(ReviewStats{AverageRating: -1, TotalCount: 500, CountKnown: true}))
	assert.Equal(t, 0.0, ReviewAdjustment(ReviewStats{AverageRating: 5.5, TotalCount: 500, CountKnown: true}))
}

func TestReviewAdjustmentNeutralBand(t *testing.T) {
	// In the 3.5-3.9 band the rating term is zero, so the adjustment equals
	// the count-trend bonus exactly regardless of review volume.
	for _, rating := range []float64{3.5, 3.7, 3.9} {
		assert.Equal(t, 0.0, ReviewAdjustment(ReviewStats{AverageRating: rating, TotalCount: 50, CountKnown: true}))
		assert.Equal(t, 1.0, ReviewAdjustment(ReviewStats{AverageRating: rating, TotalCount: 1000, CountKnown: true}))
		assert.Equal(t, 3.0, ReviewAdjustment(ReviewStats{AverageRating: rating, TotalCount: 10000, CountKnown: true}))
	}
}

func TestReviewAdjustmentRatingBands(t *testing.T) {
	tests := []struct {
		name  string
		stats ReviewStats
		want  float64
	}{
		{"top of the scale", ReviewStats{AverageRating: 5.0, TotalCount: 100, CountKnown: true}, 10},
		{"bottom of the excellent band", ReviewStats{AverageRating: 4.5, TotalCount: 100, CountKnown: true}, 5},
		{"bottom of the good band", ReviewStats{AverageRating: 4.0, TotalCount: 100, CountKnown: true}, 2},
		{"bottom of the weak band", ReviewStats{AverageRating: 3.0, TotalCount: 100, CountKnown: true}, -3},
		{"one star floors at -10", ReviewStats{AverageRating: 1.0, TotalCount: 100, CountKnown: true}, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReviewAdjustment(tt.stats), 0.0001)
		})
	}
}

func TestReviewAdjustmentReliability(t *testing.T) {
	// Five reviews carry half the weight of ten
	full := ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 10, CountKnown: true})
	half := ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 5, CountKnown: true})
	assert.InDelta(t, full/2, half, 0.0001)

	// Unknown volume is weighted at 0.3
	unknown := ReviewAdjustment(ReviewStats{AverageRating: 5.0})
	assert.InDelta(t, 3.0, unknown, 0.0001)

	// Known-but-zero volume also gets the floor weight
	zero := ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 0, CountKnown: true})
	assert.InDelta(t, 3.0, zero, 0.0001)
}

func TestReviewAdjustmentCountTrendBonus(t *testing.T) {
	// Recent-window counts replace the total-volume tiers
	assert.InDelta(t, 15, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 10, RecentCount: 100, CountKnown: true}), 0.0001)
	assert.InDelta(t, 13, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 10, RecentCount: 50, CountKnown: true}), 0.0001)
	assert.InDelta(t, 11, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 10, RecentCount: 20, CountKnown: true}), 0.0001)

	// Total-volume tiers apply when no recent window is available
	assert.InDelta(t, 13, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 10000, CountKnown: true}), 0.0001)
	assert.InDelta(t, 12, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 5000, CountKnown: true}), 0.0001)
	assert.InDelta(t, 11, ReviewAdjustment(ReviewStats{AverageRating: 5.0, TotalCount: 1000, CountKnown: true}), 0.0001)
}

func TestReviewAdjustmentBounds(t *testing.T) {
	stats := []ReviewStats{
		{AverageRating: 5.0, TotalCount: 100000, RecentCount: 100000, CountKnown: true},
		{AverageRating: 1.0, TotalCount: 100000, CountKnown: true},
		{AverageRating: 0.1, TotalCount: 1, CountKnown: true},
		{AverageRating: 4.9},
	}

	for _, s := range stats {
		adj := ReviewAdjustment(s)
		assert.GreaterOrEqual(t, adj, float64(ReviewAdjustmentMin))
		assert.LessOrEqual(t, adj, float64(ReviewAdjustmentMax))
	}
}
