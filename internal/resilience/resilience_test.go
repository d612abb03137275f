package resilience

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resonanceAPI/internal/types/checkin"
)

func f(v float64) *float64 { return &v }

var start = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type dayFn func(i int) checkin.Record

func history(n int, fn dayFn) []checkin.Record {
	out := make([]checkin.Record, n)
	for i := 0; i < n; i++ {
		r := fn(i)
		r.Date = start.AddDate(0, 0, i)
		out[i] = r
	}
	return out
}

func steadyDay(int) checkin.Record {
	return checkin.Record{Mood: f(7), Energy: f(7), Sleep: f(8), Exercise: f(30), StressLevel: f(2)}
}

func TestEmptyHistoryIsNeutral(t *testing.T) {
	p := ComputeResilience(nil)
	assert.Equal(t, 5.0, p.Score)
	assert.Equal(t, Pillars{}, p.Pillars)
	assert.Len(t, p.Notes, 1)
	assert.Empty(t, p.Suggestions)
	assert.Equal(t, 0, p.DaysUsed)
}

func TestSteadyWeekScoresWell(t *testing.T) {
	recs := history(7, func(i int) checkin.Record {
		r := steadyDay(i)
		if i == 3 {
			r.StressLevel = f(8) // one stressful day, mood held
		}
		return r
	})

	p := ComputeResilience(recs)
	assert.Equal(t, 0.0, p.Pillars.Recovery)
	assert.Equal(t, 1.5, p.Pillars.Stability)
	assert.Equal(t, 1.5, p.Pillars.Consistency)
	assert.Equal(t, 0.5, p.Pillars.Tolerance)
	assert.InDelta(t, 8.3, p.Score, 1e-9)
	assert.Equal(t, []string{"Your foundations look solid. Keep the routines that got you here."}, p.Suggestions)
	assert.Len(t, p.Notes, 4)
}

func TestRecoveryCountsQuickAndSlowRebounds(t *testing.T) {
	moods := []float64{3, 5, 6, 7, 2, 2, 3, 7, 7}
	recs := history(len(moods), func(i int) checkin.Record {
		return checkin.Record{Mood: f(moods[i]), Energy: f(moods[i])}
	})

	// dip 3 -> (5+6)/2=5.5 quick; dip 2 -> (2+3)/2=2.5 slow; dip 2 -> (3+7)/2=5 quick;
	// dip 3 -> (7+7)/2=7 quick
	p := ComputeResilience(recs)
	assert.InDelta(t, 1.2, p.Pillars.Recovery, 1e-9)
	assert.Contains(t, p.Notes[0], "3 of 4")
}

func TestRecoveryIsClamped(t *testing.T) {
	recs := history(20, func(i int) checkin.Record {
		v := 2.0
		if i%2 == 1 {
			v = 8
		}
		return checkin.Record{Mood: f(v), Energy: f(v)}
	})
	p := ComputeResilience(recs)
	assert.Equal(t, 2.0, p.Pillars.Recovery)
}

func TestDipOnLastEntryIsIgnored(t *testing.T) {
	recs := history(3, func(i int) checkin.Record {
		if i == 2 {
			return checkin.Record{Mood: f(1), Energy: f(1)}
		}
		return checkin.Record{Mood: f(7), Energy: f(7)}
	})
	p := ComputeResilience(recs)
	assert.Equal(t, 0.0, p.Pillars.Recovery)
}

func TestStabilityNeedsFivePoints(t *testing.T) {
	recs := history(4, steadyDay)
	p := ComputeResilience(recs)
	assert.Equal(t, 0.0, p.Pillars.Stability)
	assert.Contains(t, p.Notes[1], "at least 5")
}

func TestStabilityThresholds(t *testing.T) {
	cases := []struct {
		name  string
		swing float64
		want  float64
	}{
		{"calm", 0.5, 1.5},
		{"mild", 1.25, 0.5},
		{"choppy", 1.75, -0.5},
		{"volatile", 3, -1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// alternating 5±swing has a population std dev of exactly swing over an even count
			recs := history(6, func(i int) checkin.Record {
				v := 5 + tc.swing
				if i%2 == 1 {
					v = 5 - tc.swing
				}
				return checkin.Record{Mood: f(v), Energy: f(v)}
			})
			assert.Equal(t, tc.want, ComputeResilience(recs).Pillars.Stability)
		})
	}
}

func TestConsistencyThresholds(t *testing.T) {
	cases := []struct {
		name          string
		sleepDays     int
		exerciseDays  int
		wantPillarVal float64
	}{
		{"strong", 5, 3, 1.5},
		{"ok", 4, 2, 0.5},
		{"flat", 2, 2, 0},
		{"weak", 1, 2, -1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := history(7, func(i int) checkin.Record {
				r := checkin.Record{Sleep: f(6), Exercise: f(5)}
				if i < tc.sleepDays {
					r.Sleep = f(7)
				}
				if i < tc.exerciseDays {
					r.Exercise = f(20)
				}
				return r
			})
			assert.Equal(t, tc.wantPillarVal, ComputeResilience(recs).Pillars.Consistency)
		})
	}
}

func TestConsistencyUsesOnlyLastSevenEntries(t *testing.T) {
	recs := history(14, func(i int) checkin.Record {
		if i < 7 {
			return checkin.Record{Sleep: f(9), Exercise: f(60)}
		}
		return checkin.Record{Sleep: f(5)}
	})
	assert.Equal(t, -1.0, ComputeResilience(recs).Pillars.Consistency)
}

func TestTolerance(t *testing.T) {
	recs := history(8, func(i int) checkin.Record {
		r := checkin.Record{Mood: f(6), Energy: f(6), StressLevel: f(2)}
		switch i {
		case 2, 5, 7:
			r.StressLevel = f(9)
			r.Mood = f(3)
		}
		return r
	})
	p := ComputeResilience(recs)
	assert.Equal(t, -1.5, p.Pillars.Tolerance)
	assert.Contains(t, p.Suggestions, "Stressful days are hitting hard. Try a short breathing break when stress spikes.")
}

func TestToleranceTreatsMissingMoodAsNeutral(t *testing.T) {
	recs := history(5, func(i int) checkin.Record {
		if i == 4 {
			return checkin.Record{StressLevel: f(9)}
		}
		return checkin.Record{StressLevel: f(2)}
	})
	assert.Equal(t, 0.5, ComputeResilience(recs).Pillars.Tolerance)
}

func TestOnlyLastTwentyEightEntriesAreUsed(t *testing.T) {
	recs := history(40, steadyDay)
	// shuffle to prove input order does not matter
	shuffled := make([]checkin.Record, len(recs))
	copy(shuffled, recs)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	p := ComputeResilience(shuffled)
	assert.Equal(t, 28, p.DaysUsed)
	assert.Equal(t, ComputeResilience(recs), p)
}

func TestSuggestionsFollowNegativePillars(t *testing.T) {
	got := suggestionsFor(Pillars{Recovery: -0.6, Stability: 1, Consistency: -1, Tolerance: 0})
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "low day")
	assert.Contains(t, got[1], "7 hours")
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	extreme := func() *float64 {
		if rng.Intn(2) == 0 {
			return f(0)
		}
		return f(10)
	}
	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(40)
		recs := history(n, func(int) checkin.Record {
			return checkin.Record{
				Mood: extreme(), Energy: extreme(), StressLevel: extreme(),
				Sleep: f(float64(rng.Intn(25))), Exercise: f(float64(rng.Intn(120))),
			}
		})
		p := ComputeResilience(recs)
		require.GreaterOrEqual(t, p.Score, 0.0)
		require.LessOrEqual(t, p.Score, 10.0)
	}
}

func TestDeterministic(t *testing.T) {
	recs := history(20, func(i int) checkin.Record {
		return checkin.Record{Mood: f(float64(i % 10)), Energy: f(float64((i * 3) % 10)), StressLevel: f(float64((i * 7) % 10))}
	})
	assert.Equal(t, ComputeResilience(recs), ComputeResilience(recs))
}
