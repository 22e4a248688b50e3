// internal/scoring/review.go
package scoring

import (
	"math"
)

const (
	ReviewAdjustmentMin = -10
	ReviewAdjustmentMax = 15
)

// ReviewStats is the aggregate the review adjustment works from.
type ReviewStats struct {
	AverageRating float64
	TotalCount    int64
	RecentCount   int64 // reviews within the recent window; 0 means unavailable
	CountKnown    bool  // whether TotalCount was observed at all
}

// ReviewAdjustment converts a review aggregate into a ranking bias in
// [-10,+15]. It is a separate axis from the composite trend score and never
// errors: an invalid rating resolves to 0.
func ReviewAdjustment(stats ReviewStats) float64 {
	if stats.AverageRating <= 0 || stats.AverageRating > 5 {
		return 0
	}

	adjustment := ratingTerm(stats.AverageRating)*reliabilityFactor(stats) + countTrendBonus(stats)

	return math.Max(ReviewAdjustmentMin, math.Min(ReviewAdjustmentMax, adjustment))
}

// ratingTerm maps the average star rating onto tiered linear bands.
func ratingTerm(rating float64) float64 {
	switch {
	case rating >= 4.5:
		// 4.5 -> +5 rising linearly to 5.0 -> +10
		return 5 + (rating-4.5)*10
	case rating >= 4.0:
		// 4.0 -> +2 rising linearly to 4.5 -> +5
		return 2 + (rating-4.0)*6
	case rating >= 3.5:
		// neutral band
		return 0
	case rating >= 3.0:
		// 3.0 -> -3 rising linearly to 3.5 -> 0
		return -3 + (rating-3.0)*6
	default:
		// 3.0 -> -3 falling linearly, floored at -10
		return math.Max(-10, -3-(3.0-rating)*3.5)
	}
}

// reliabilityFactor down-weights the rating term when review volume is low.
func reliabilityFactor(stats ReviewStats) float64 {
	if !stats.CountKnown || stats.TotalCount <= 0 {
		return 0.3
	}
	if stats.TotalCount >= 10 {
		return 1.0
	}
	return float64(stats.TotalCount) / 10
}

// countTrendBonus awards 0-5 points for review volume. A recent-window count,
// when available, is the better momentum indicator and replaces the
// total-volume tiers.
func countTrendBonus(stats ReviewStats) float64 {
	if stats.RecentCount > 0 {
		switch {
		case stats.RecentCount >= 100:
			return 5
		case stats.RecentCount >= 50:
			return 3
		case stats.RecentCount >= 20:
			return 1
		}
		return 0
	}

	switch {
	case stats.TotalCount >= 10000:
		return 3
	case stats.TotalCount >= 5000:
		return 2
	case stats.TotalCount >= 1000:
		return 1
	}
	return 0
}
