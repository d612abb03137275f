// Package streak computes check-in streaks and the morning grace window that
// can still save a streak after a missed evening.
package streak

import (
	"math"
	"sort"
	"time"
)

// DefaultGraceCutoff is measured from the start of today, so grace always
// ends at noon local time regardless of when yesterday's check-in happened.
const DefaultGraceCutoff = 12 * time.Hour

type Status string

const (
	StatusNoStreak    Status = "no_streak"
	StatusActiveToday Status = "active_today"
	StatusGracePeriod Status = "grace_period"
	StatusBroken      Status = "broken"
)

var milestones = []int{3, 7, 14, 30, 60, 100, 365}

type State struct {
	Status          Status         `json:"status"`
	CurrentStreak   int            `json:"currentStreak"`
	LongestStreak   int            `json:"longestStreak"`
	IsInGracePeriod bool           `json:"isInGracePeriod"`
	GraceEndsAt     *time.Time     `json:"graceEndsAt"`
	GraceRemaining  *time.Duration `json:"graceRemaining,omitempty"`
	LastCheckin     *time.Time     `json:"lastCheckin,omitempty"`
	NextMilestone   int            `json:"nextMilestone,omitempty"`
}

type Calculator struct {
	GraceCutoff time.Duration
}

func NewCalculator() *Calculator {
	return &Calculator{GraceCutoff: DefaultGraceCutoff}
}

// CalculateStreakWithGrace uses the default 12h cutoff.
func CalculateStreakWithGrace(dates []time.Time, now time.Time) State {
	return NewCalculator().Calculate(dates, now)
}

// Calculate derives the streak state at now. Dates are civil days; their
// time-of-day is ignored. They are expected newest first, but any order
// works since duplicates are collapsed and the list re-sorted.
func (c *Calculator) Calculate(dates []time.Time, now time.Time) State {
	loc := now.Location()
	days := uniqueDays(dates, loc)
	if len(days) == 0 {
		return State{Status: StatusNoStreak, NextMilestone: milestones[0]}
	}

	// newest first
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	current := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) != 1 {
			break
		}
		current++
	}

	today := noon(now, loc)
	last := days[0]
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	state := State{
		CurrentStreak: current,
		LongestStreak: longestRun(days),
		LastCheckin:   &lastDay,
	}

	gap := daysBetween(last, today)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	cutoff := startOfToday.Add(c.graceCutoff())

	switch {
	case gap <= 0:
		// a future-dated check-in is a caller bug; treat it like today
		state.Status = StatusActiveToday
	case gap == 1 && now.Before(cutoff):
		state.Status = StatusGracePeriod
		state.IsInGracePeriod = true
		state.GraceEndsAt = &cutoff
		remaining := cutoff.Sub(now)
		state.GraceRemaining = &remaining
	default:
		state.Status = StatusBroken
	}

	state.NextMilestone = nextMilestone(current)
	if state.Status == StatusBroken {
		state.NextMilestone = milestones[0]
	}
	return state
}

func (c *Calculator) graceCutoff() time.Duration {
	if c == nil || c.GraceCutoff <= 0 {
		return DefaultGraceCutoff
	}
	return c.GraceCutoff
}

// CalculateLongestStreak returns the longest run of consecutive days.
// Same-day duplicates count once.
func CalculateLongestStreak(dates []time.Time) int {
	days := uniqueDays(dates, time.UTC)
	return longestRun(days)
}

func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	asc := make([]time.Time, len(days))
	copy(asc, days)
	sort.Slice(asc, func(i, j int) bool { return asc[i].Before(asc[j]) })

	best, run := 1, 1
	for i := 1; i < len(asc); i++ {
		switch daysBetween(asc[i-1], asc[i]) {
		case 0:
			continue
		case 1:
			run++
		default:
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// noon anchors a civil date at 12:00 in loc so whole-day arithmetic is not
// thrown off by DST transitions.
func noon(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

// uniqueDays anchors every date at noon in loc, reading the civil date in
// the timestamp's own zone, and drops duplicates.
func uniqueDays(dates []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		n := noon(d, loc)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func daysBetween(earlier, later time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / 24))
}

func nextMilestone(current int) int {
	for _, m := range milestones {
		if current < m {
			return m
		}
	}
	return 0
}
