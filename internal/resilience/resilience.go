// Package resilience derives a four-pillar resilience profile from the last
// four weeks of check-ins.
package resilience

import (
	"fmt"
	"math"

	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/internal/window"
	"resonanceAPI/utils"
)

const (
	WindowSize      = 28
	RecentWindow    = 7
	MinStabilityPts = 5

	dipThreshold       = 4.0
	reboundLookahead   = 2
	sleepTargetHours   = 7.0
	exerciseTargetMins = 20.0
	heldSteadyFloor    = 5.0

	weightRecovery    = 1.2
	weightStability   = 1.0
	weightConsistency = 0.9
	weightTolerance   = 0.9

	neutralScore = 5.0
)

type Pillars struct {
	Recovery    float64 `json:"recovery"`
	Stability   float64 `json:"stability"`
	Consistency float64 `json:"consistency"`
	Tolerance   float64 `json:"tolerance"`
}

type Profile struct {
	Score       float64  `json:"score"`
	Pillars     Pillars  `json:"pillars"`
	Notes       []string `json:"notes"`
	Suggestions []string `json:"suggestions"`
	DaysUsed    int      `json:"daysUsed"`
}

// ComputeResilience scores the trailing 28 entries of history. The input is
// never modified and need not be sorted.
func ComputeResilience(history []checkin.Record) Profile {
	recent := window.Recent(history, WindowSize)
	if len(recent) == 0 {
		return Profile{
			Score:       neutralScore,
			Notes:       []string{"Not enough check-ins yet to estimate resilience. Check in for a few days to get started."},
			Suggestions: []string{},
		}
	}

	var notes []string
	recovery, note := recoveryPillar(recent)
	notes = append(notes, note)
	stability, note := stabilityPillar(window.Trailing(recent, RecentWindow))
	notes = append(notes, note)
	consistency, note := consistencyPillar(window.Trailing(recent, RecentWindow))
	notes = append(notes, note)
	tolerance, note := tolerancePillar(recent)
	notes = append(notes, note)

	p := Pillars{
		Recovery:    utils.RoundTo(recovery, 2),
		Stability:   stability,
		Consistency: consistency,
		Tolerance:   utils.RoundTo(tolerance, 2),
	}

	raw := neutralScore +
		weightRecovery*recovery +
		weightStability*stability +
		weightConsistency*consistency +
		weightTolerance*tolerance

	return Profile{
		Score:       utils.RoundTo(utils.Clamp(raw, 0, 10), 1),
		Pillars:     p,
		Notes:       notes,
		Suggestions: suggestionsFor(p),
		DaysUsed:    len(recent),
	}
}

// dipValue is the lower of mood and energy, whichever were recorded.
func dipValue(r checkin.Record) (float64, bool) {
	m, e := window.Value(r, window.Mood), window.Value(r, window.Energy)
	switch {
	case m != nil && e != nil:
		return math.Min(*m, *e), true
	case m != nil:
		return *m, true
	case e != nil:
		return *e, true
	}
	return 0, false
}

func recoveryPillar(records []checkin.Record) (float64, string) {
	rebounds, slows := 0, 0
	for i, r := range records {
		dip, ok := dipValue(r)
		if !ok || dip > dipThreshold {
			continue
		}
		var follow []float64
		for j := i + 1; j < len(records) && j <= i+reboundLookahead; j++ {
			if v, ok := dipValue(records[j]); ok {
				follow = append(follow, v)
			}
		}
		if len(follow) == 0 {
			continue
		}
		if window.Mean(follow) >= dip+1 {
			rebounds++
		} else {
			slows++
		}
	}

	total := rebounds + slows
	if total == 0 {
		return 0, "No low days to recover from in this window."
	}
	c := utils.Clamp(float64(rebounds-slows)*0.6, -2, 2)
	return c, fmt.Sprintf("Bounced back quickly from %d of %d low days.", rebounds, total)
}

func stabilityPillar(records []checkin.Record) (float64, string) {
	moods := window.Values(records, window.Mood)
	energies := window.Values(records, window.Energy)
	if len(moods) < MinStabilityPts || len(energies) < MinStabilityPts {
		return 0, fmt.Sprintf("Need at least %d mood and energy ratings in the last week to judge stability.", MinStabilityPts)
	}

	volatility := (window.PopStdDev(moods) + window.PopStdDev(energies)) / 2
	var c float64
	switch {
	case volatility <= 1:
		c = 1.5
	case volatility <= 1.5:
		c = 0.5
	case volatility <= 2:
		c = -0.5
	default:
		c = -1.5
	}
	return c, fmt.Sprintf("Mood and energy swing by about %.1f points day to day.", volatility)
}

func consistencyPillar(records []checkin.Record) (float64, string) {
	sleepDays, exerciseDays := 0, 0
	for _, r := range records {
		if v := window.Value(r, window.Sleep); v != nil && *v >= sleepTargetHours {
			sleepDays++
		}
		if v := window.Value(r, window.Exercise); v != nil && *v >= exerciseTargetMins {
			exerciseDays++
		}
	}

	habits := sleepDays + exerciseDays
	var c float64
	switch {
	case habits >= 8:
		c = 1.5
	case habits >= 6:
		c = 0.5
	case habits >= 4:
		c = 0
	default:
		c = -1.0
	}
	return c, fmt.Sprintf("Slept %gh+ on %d days and moved %g+ minutes on %d days this week.",
		sleepTargetHours, sleepDays, exerciseTargetMins, exerciseDays)
}

func tolerancePillar(records []checkin.Record) (float64, string) {
	stress := window.Values(records, window.Stress)
	if len(stress) == 0 {
		return 0, "No stress ratings yet."
	}
	mean := window.Mean(stress)

	held, tough := 0, 0
	for _, r := range records {
		s := window.Value(r, window.Stress)
		if s == nil || *s < mean+1 {
			continue
		}
		mood := utils.FloatOr(window.Value(r, window.Mood), heldSteadyFloor)
		energy := utils.FloatOr(window.Value(r, window.Energy), heldSteadyFloor)
		if mood >= heldSteadyFloor && energy >= heldSteadyFloor {
			held++
		} else {
			tough++
		}
	}

	if held+tough == 0 {
		return 0, "No unusually stressful days in this window."
	}
	c := utils.Clamp(float64(held-tough)*0.5, -1.5, 1.5)
	return c, fmt.Sprintf("Held steady on %d of %d high-stress days.", held, held+tough)
}

func suggestionsFor(p Pillars) []string {
	var out []string
	if p.Recovery < 0 {
		out = append(out, "After a low day, plan one small restorative thing for the next morning.")
	}
	if p.Stability < 0 {
		out = append(out, "Your mood has been swinging. Regular meals, light and bedtime help smooth it out.")
	}
	if p.Consistency < 0 {
		out = append(out, "Aim for 7 hours of sleep and a 20 minute walk on most days this week.")
	}
	if p.Tolerance < 0 {
		out = append(out, "Stressful days are hitting hard. Try a short breathing break when stress spikes.")
	}
	if len(out) == 0 {
		out = append(out, "Your foundations look solid. Keep the routines that got you here.")
	}
	return out
}
