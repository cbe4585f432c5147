package policy

import (
	"math"
	"time"
)

const millisPerDay = 24 * 60 * 60 * 1000

// DaysBetween returns the elapsed whole days between now and t, rounded
// half-up: round(ms / 86_400_000). The rounding (not floor or ceil) is part
// of the threshold contract; 12h of inactivity already counts as a full day.
func DaysBetween(now, t time.Time) int {
	return int(math.Round(float64(now.Sub(t).Milliseconds()) / millisPerDay))
}
