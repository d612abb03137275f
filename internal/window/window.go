// Package window holds the trailing-window helpers shared by the resilience
// engine and the insight generator.
package window

import (
	"math"

	"resonanceAPI/internal/types/checkin"
)

// Metric names a numeric field of a check-in record.
type Metric string

const (
	Mood       Metric = "mood"
	Energy     Metric = "energy"
	Sleep      Metric = "sleep"
	Exercise   Metric = "exercise"
	Stress     Metric = "stress"
	Connection Metric = "connection"
	Gratitude  Metric = "gratitude"
	Purpose    Metric = "purpose"
	GoodDeeds  Metric = "good_deeds"
	ScreenTime Metric = "screen_time"
	Resilience Metric = "resilience"
)

// Value returns the metric's value for r, or nil when it was not recorded
// or is NaN.
func Value(r checkin.Record, m Metric) *float64 {
	var p *float64
	switch m {
	case Mood:
		p = r.Mood
	case Energy:
		p = r.Energy
	case Sleep:
		p = r.Sleep
	case Exercise:
		p = r.Exercise
	case Stress:
		p = r.StressLevel
	case Connection:
		p = r.Connection
	case Gratitude:
		p = r.Gratitude
	case Purpose:
		p = r.Purpose
	case GoodDeeds:
		p = r.GoodDeeds
	case ScreenTime:
		p = r.ScreenTimeHours
	case Resilience:
		p = r.ResilienceSelfReport
	}
	if p == nil || math.IsNaN(*p) {
		return nil
	}
	return p
}

// Recent sorts records ascending, merges same-day entries and keeps the last n.
func Recent(records []checkin.Record, n int) []checkin.Record {
	return Trailing(checkin.MergeSameDay(records), n)
}

// Trailing returns the last n entries of an ascending slice. The result
// shares no backing array with the input.
func Trailing(records []checkin.Record, n int) []checkin.Record {
	if n <= 0 || len(records) == 0 {
		return []checkin.Record{}
	}
	start := len(records) - n
	if start < 0 {
		start = 0
	}
	out := make([]checkin.Record, len(records)-start)
	copy(out, records[start:])
	return out
}

// Values collects the present values of m, in record order.
func Values(records []checkin.Record, m Metric) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v := Value(r, m); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Pairs collects aligned (a, b) values from records that have both.
func Pairs(records []checkin.Record, a, b Metric) (xs, ys []float64) {
	for _, r := range records {
		va, vb := Value(r, a), Value(r, b)
		if va == nil || vb == nil {
			continue
		}
		xs = append(xs, *va)
		ys = append(ys, *vb)
	}
	return xs, ys
}

// Mean of xs; 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopStdDev is the population standard deviation; 0 for an empty slice.
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}
