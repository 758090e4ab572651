package domain

import "time"

// ElapsedSeconds returns whole seconds between from and to, never negative.
func ElapsedSeconds(from, to time.Time) int64 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// SecondsToHours converts seconds to fractional hours.
func SecondsToHours(sec int64) float64 {
	return float64(sec) / 3600
}
