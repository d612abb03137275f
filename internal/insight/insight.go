// Package insight turns recent check-ins into short plain-language
// observations: week-over-week trends and metric pairs that move together.
// Producing nothing is a normal result.
package insight

import (
	"fmt"
	"math"
	"sort"

	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/internal/window"
	"resonanceAPI/utils"
)

const (
	WeekSize          = 7
	MinWeekValues     = 3
	CorrelationWindow = 28
	MinCorrelationN   = 7
	MinCorrelationR   = 0.5
)

type Kind string

const (
	KindTrend       Kind = "trend"
	KindCorrelation Kind = "correlation"
)

type Direction string

const (
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionTogether Direction = "together"
	DirectionOpposite Direction = "opposite"
)

type Insight struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Metrics   []window.Metric `json:"metrics"`
	Direction Direction       `json:"direction"`
	// Positive reports whether the change is good news for the user.
	Positive bool    `json:"positive"`
	Delta    float64 `json:"delta,omitempty"`
	R        float64 `json:"r,omitempty"`
	Strength float64 `json:"strength"`
	Message  string  `json:"message"`
}

type trendRule struct {
	metric    window.Metric
	label     string
	unit      string
	threshold float64
	// lowerIsBetter flips which direction counts as improvement.
	lowerIsBetter bool
}

var trendRules = []trendRule{
	{metric: window.Mood, label: "mood", threshold: 1.0},
	{metric: window.Energy, label: "energy", threshold: 1.0},
	{metric: window.Stress, label: "stress", threshold: 1.0, lowerIsBetter: true},
	{metric: window.Connection, label: "sense of connection", threshold: 1.0},
	{metric: window.Sleep, label: "sleep", unit: "hours", threshold: 0.5},
	{metric: window.Exercise, label: "exercise", unit: "minutes", threshold: 10},
	{metric: window.ScreenTime, label: "screen time", unit: "hours", threshold: 1.0, lowerIsBetter: true},
}

type pairRule struct {
	a, b           window.Metric
	aLabel, bLabel string
}

var pairRules = []pairRule{
	{window.Sleep, window.Energy, "sleep", "energy"},
	{window.Sleep, window.Mood, "sleep", "mood"},
	{window.Exercise, window.Mood, "exercise", "mood"},
	{window.Exercise, window.Energy, "exercise", "energy"},
	{window.Stress, window.Mood, "stress", "mood"},
	{window.Connection, window.Mood, "connection", "mood"},
	{window.Gratitude, window.Mood, "gratitude", "mood"},
	{window.ScreenTime, window.Mood, "screen time", "mood"},
}

// WeekOverWeek compares the mean of the last 7 entries with the mean of the
// 7 before them. Each week needs at least 3 recorded values of m.
func WeekOverWeek(records []checkin.Record, m window.Metric) (float64, bool) {
	merged := checkin.MergeSameDay(records)
	if len(merged) == 0 {
		return 0, false
	}
	last := window.Trailing(merged, WeekSize)
	prior := window.Trailing(merged[:len(merged)-len(last)], WeekSize)

	lv, pv := window.Values(last, m), window.Values(prior, m)
	if len(lv) < MinWeekValues || len(pv) < MinWeekValues {
		return 0, false
	}
	return window.Mean(lv) - window.Mean(pv), true
}

// Trends reports every metric whose week-over-week change crosses its
// threshold, strongest first.
func Trends(records []checkin.Record) []Insight {
	out := []Insight{}
	for _, rule := range trendRules {
		delta, ok := WeekOverWeek(records, rule.metric)
		if !ok || math.Abs(delta) < rule.threshold {
			continue
		}
		dir := DirectionUp
		if delta < 0 {
			dir = DirectionDown
		}
		out = append(out, Insight{
			ID:        "trend:" + string(rule.metric),
			Kind:      KindTrend,
			Metrics:   []window.Metric{rule.metric},
			Direction: dir,
			Positive:  (delta > 0) != rule.lowerIsBetter,
			Delta:     utils.RoundTo(delta, 2),
			Strength:  utils.RoundTo(math.Abs(delta)/rule.threshold, 2),
			Message:   trendMessage(rule, delta),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

func trendMessage(rule trendRule, delta float64) string {
	verb := "up"
	if delta < 0 {
		verb = "down"
	}
	amount := fmt.Sprintf("%.1f", math.Abs(delta))
	if rule.unit != "" {
		amount += " " + rule.unit
	} else {
		amount += " points"
	}
	return fmt.Sprintf("Your %s is %s %s compared with the week before.", rule.label, verb, amount)
}

// Correlations reports metric pairs that move together over the last 28
// entries, strongest first.
func Correlations(records []checkin.Record) []Insight {
	recent := window.Recent(records, CorrelationWindow)
	out := []Insight{}
	for _, rule := range pairRules {
		xs, ys := window.Pairs(recent, rule.a, rule.b)
		if len(xs) < MinCorrelationN {
			continue
		}
		r, ok := Pearson(xs, ys)
		if !ok || math.Abs(r) < MinCorrelationR {
			continue
		}
		dir := DirectionTogether
		if r < 0 {
			dir = DirectionOpposite
		}
		out = append(out, Insight{
			ID:        pairID(rule.a, rule.b),
			Kind:      KindCorrelation,
			Metrics:   []window.Metric{rule.a, rule.b},
			Direction: dir,
			Positive:  positiveCorrelation(rule, r),
			R:         utils.RoundTo(r, 2),
			Strength:  utils.RoundTo(math.Abs(r), 2),
			Message:   correlationMessage(rule, r),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

// positiveCorrelation is true when the pattern points at a helpful habit:
// a good habit rising with mood or energy, or a draining one falling with it.
func positiveCorrelation(rule pairRule, r float64) bool {
	switch rule.a {
	case window.Stress, window.ScreenTime:
		return r < 0
	}
	return r > 0
}

func correlationMessage(rule pairRule, r float64) string {
	if r > 0 {
		return fmt.Sprintf("Your %s and %s move together: on days with more %s, your %s tends to be higher.",
			rule.aLabel, rule.bLabel, rule.aLabel, rule.bLabel)
	}
	return fmt.Sprintf("Your %s and %s move in opposite directions: on days with more %s, your %s tends to be lower.",
		rule.aLabel, rule.bLabel, rule.aLabel, rule.bLabel)
}

func pairID(a, b window.Metric) string {
	if b < a {
		a, b = b, a
	}
	return "correlation:" + string(a) + "+" + string(b)
}

// Generate returns trends followed by correlations, each group ordered by
// strength, with duplicates removed. It never returns nil.
func Generate(records []checkin.Record) []Insight {
	all := append(Trends(records), Correlations(records)...)
	seen := make(map[string]bool, len(all))
	out := make([]Insight, 0, len(all))
	for _, in := range all {
		if seen[in.ID] {
			continue
		}
		seen[in.ID] = true
		out = append(out, in)
	}
	return out
}
