package window

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resonanceAPI/internal/types/checkin"
)

func f(v float64) *float64 { return &v }

func rec(daysAgo int, mood, energy *float64) checkin.Record {
	base := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return checkin.Record{Date: base.AddDate(0, 0, -daysAgo), Mood: mood, Energy: energy}
}

func TestTrailing(t *testing.T) {
	records := []checkin.Record{rec(3, f(1), nil), rec(2, f(2), nil), rec(1, f(3), nil)}

	got := Trailing(records, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, *got[0].Mood)

	assert.Len(t, Trailing(records, 10), 3)
	assert.Empty(t, Trailing(records, 0))
	assert.Empty(t, Trailing(nil, 7))
}

func TestRecentSortsAndMerges(t *testing.T) {
	records := []checkin.Record{rec(1, f(5), nil), rec(3, f(1), nil), rec(1, nil, f(6)), rec(2, f(2), nil)}

	got := Recent(records, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, *got[0].Mood)
	assert.Equal(t, 5.0, *got[1].Mood)
	assert.Equal(t, 6.0, *got[1].Energy)
}

func TestValuesSkipsMissingAndNaN(t *testing.T) {
	records := []checkin.Record{rec(3, f(4), nil), rec(2, nil, nil), rec(1, f(math.NaN()), nil), rec(0, f(8), nil)}
	assert.Equal(t, []float64{4, 8}, Values(records, Mood))
	assert.Empty(t, Values(records, Energy))
}

func TestPairs(t *testing.T) {
	records := []checkin.Record{rec(2, f(4), f(5)), rec(1, f(6), nil), rec(0, f(7), f(8))}
	xs, ys := Pairs(records, Mood, Energy)
	assert.Equal(t, []float64{4, 7}, xs)
	assert.Equal(t, []float64{5, 8}, ys)
}

func TestMeanAndPopStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopStdDev(nil))
	assert.InDelta(t, 5.0, Mean([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.InDelta(t, 2.0, PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
