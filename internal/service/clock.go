package service

import (
	"math"
	"time"
)

// startOfDay returns midnight of t's calendar day, in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last representable instant of t's calendar day.
// Using an inclusive upper bound keeps the three dueDate buckets disjoint:
// today is [start, end], upcoming is [end, ∞), overdue is (−∞, start).
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// round2 rounds to two decimal places, the precision the dashboard reports
// completion rates at.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
