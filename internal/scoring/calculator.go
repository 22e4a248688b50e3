// internal/scoring/calculator.go
package scoring

import (
	"math"
	"sort"

	"github.com/trendlens/trendlens-backend/internal/models"
)

const (
	// Component caps. Amazon and Reddit are capped independently, so the
	// composite can never leave [0,100].
	AmazonComponentCap = 70
	RedditComponentCap = 30

	// Being listed on the movers page at all has baseline value.
	AmazonBaseline = 10

	redditHighEngagement = 500
	redditMidEngagement  = 300
	redditHighPoints     = 20
	redditMidPoints      = 15
	redditTopSignals     = 2
)

// Breakdown shows per-source components of the composite trend score.
type Breakdown struct {
	Amazon int `json:"amazon"`
	Reddit int `json:"reddit"`
	Total  int `json:"total"`
}

// ComputeTrendScore turns a product's full current signal set into a bounded
// composite score. It is pure: the same signal slice always yields the same
// breakdown. Callers must pass signals ordered by detected_at ascending; the
// Amazon component depends on iteration order (first positive jump wins).
func ComputeTrendScore(signals []models.TrendSignal) Breakdown {
	b := Breakdown{
		Amazon: amazonComponent(signals),
		Reddit: redditComponent(signals),
	}
	b.Total = b.Amazon + b.Reddit
	return b
}

// amazonComponent scores sales-rank movement, 0-70.
//
// The first Amazon signal with a positive jump wins, not the maximum. That
// matches the established scoring behavior the rest of the pipeline was tuned
// against; determinism comes from the caller's detected_at ordering.
func amazonComponent(signals []models.TrendSignal) int {
	listed := false

	for _, sig := range signals {
		if sig.Source != models.SignalSourceAmazonMovers {
			continue
		}
		listed = true

		jump := sig.Value
		if jump <= 0 && sig.Metadata.SalesJumpPercent != nil {
			jump = *sig.Metadata.SalesJumpPercent
		}

		if jump > 0 {
			score := int(math.Floor(jump / 20))
			if score < AmazonBaseline {
				score = AmazonBaseline
			}
			if score > AmazonComponentCap {
				score = AmazonComponentCap
			}
			return score
		}
	}

	if listed {
		return AmazonBaseline
	}
	return 0
}

// redditComponent scores discussion engagement and volume, 0-30.
func redditComponent(signals []models.TrendSignal) int {
	var reddit []models.TrendSignal
	for _, sig := range signals {
		if sig.Source == models.SignalSourceRedditSkincare {
			reddit = append(reddit, sig)
		}
	}

	if len(reddit) == 0 {
		return 0
	}

	sort.SliceStable(reddit, func(i, j int) bool {
		return reddit[i].Value > reddit[j].Value
	})

	score := 0
	for i, sig := range reddit {
		if i >= redditTopSignals {
			break
		}
		switch {
		case sig.Value > redditHighEngagement:
			score += redditHighPoints
		case sig.Value >= redditMidEngagement:
			score += redditMidPoints
		}
	}

	// Volume bonus counts every reddit signal, not just high-engagement ones.
	switch {
	case len(reddit) >= 3:
		score += 10
	case len(reddit) >= 2:
		score += 5
	}

	if score > RedditComponentCap {
		score = RedditComponentCap
	}
	return score
}

// NextStatus applies the score-driven status transition rule. Published
// products are terminal with respect to automatic transitions: only an
// explicit editorial action sets or unsets that state.
func NextStatus(current models.ProductStatus, total, flagThreshold int) models.ProductStatus {
	if current == models.ProductStatusPublished {
		return current
	}

	if total >= flagThreshold {
		return models.ProductStatusFlagged
	}

	if current == models.ProductStatusFlagged {
		return models.ProductStatusDraft
	}

	return current
}
