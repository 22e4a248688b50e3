// internal/scoring/decay_test.go
package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testDecay = DecayParams{GraceDays: 3, RatePerDay: 0.04}

func TestDecayWithinGracePeriod(t *testing.T) {
	assert.Equal(t, 50.0, Decay(50, 0, testDecay))
	assert.Equal(t, 50.0, Decay(50, 3, testDecay))
}

func TestDecayErodesPastGrace(t *testing.T) {
	// 10 days past grace loses 40% of the raw composite
	assert.InDelta(t, 30.0, Decay(50, 13, testDecay), 0.01)

	// decay is monotonically non-increasing in elapsed days
	prev := Decay(80, 0, testDecay)
	for days := 1; days < 60; days++ {
		cur := Decay(80, days, testDecay)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestDecayFloorsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, Decay(50, 365, testDecay))
	assert.Equal(t, 0.0, Decay(0, 10, testDecay))
	assert.Equal(t, 0.0, Decay(-5, 10, testDecay))
}

func TestDaysTrending(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysTrending(now, now))
	assert.Equal(t, 0, DaysTrending(now.Add(time.Hour), now))
	assert.Equal(t, 1, DaysTrending(now.AddDate(0, 0, -1), now))
	assert.Equal(t, 10, DaysTrending(now.AddDate(0, 0, -10), now))
	assert.Equal(t, 0, DaysTrending(now.Add(-23*time.Hour), now))
}
