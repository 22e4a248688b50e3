// internal/scoring/decay.go
package scoring

import (
	"math"
	"time"
)

// DecayParams controls how a displayed score erodes without fresh signals.
type DecayParams struct {
	GraceDays  int     // no decay while days trending is within the grace period
	RatePerDay float64 // fraction of the raw composite lost per day past the grace period
}

// Decay computes the displayed score for a raw composite after daysTrending
// days. The raw composite itself is untouched; peak and base scores keep the
// undecayed provenance.
func Decay(raw int, daysTrending int, p DecayParams) float64 {
	if raw <= 0 {
		return 0
	}

	over := daysTrending - p.GraceDays
	if over <= 0 {
		return float64(raw)
	}

	factor := 1 - p.RatePerDay*float64(over)
	if factor <= 0 {
		return 0
	}

	return math.Round(float64(raw)*factor*100) / 100
}

// DaysTrending counts whole days elapsed since first detection.
func DaysTrending(firstDetected, now time.Time) int {
	if now.Before(firstDetected) {
		return 0
	}
	return int(now.Sub(firstDetected).Hours() / 24)
}
