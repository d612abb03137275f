package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestEmptyInputIsNoStreak(t *testing.T) {
	s := CalculateStreakWithGrace(nil, at(2026, 5, 10, 9))
	assert.Equal(t, StatusNoStreak, s.Status)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.LongestStreak)
	assert.False(t, s.IsInGracePeriod)
	assert.Nil(t, s.GraceEndsAt)
	assert.Equal(t, 3, s.NextMilestone)
}

func TestSingleCheckinToday(t *testing.T) {
	s := CalculateStreakWithGrace([]time.Time{day(2026, 5, 10)}, at(2026, 5, 10, 21))
	assert.Equal(t, StatusActiveToday, s.Status)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.False(t, s.IsInGracePeriod)
	assert.Nil(t, s.GraceEndsAt)
}

func TestGracePeriodBeforeCutoff(t *testing.T) {
	dates := []time.Time{day(2026, 5, 9), day(2026, 5, 8), day(2026, 5, 7)}
	now := time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)

	s := CalculateStreakWithGrace(dates, now)
	assert.Equal(t, StatusGracePeriod, s.Status)
	assert.True(t, s.IsInGracePeriod)
	assert.Equal(t, 3, s.CurrentStreak)
	require.NotNil(t, s.GraceEndsAt)
	assert.Equal(t, at(2026, 5, 10, 12), *s.GraceEndsAt)
	require.NotNil(t, s.GraceRemaining)
	assert.Equal(t, 3*time.Hour+30*time.Minute, *s.GraceRemaining)
	assert.Equal(t, 7, s.NextMilestone)
}

func TestBrokenAfterCutoff(t *testing.T) {
	dates := []time.Time{day(2026, 5, 9), day(2026, 5, 8), day(2026, 5, 7)}

	s := CalculateStreakWithGrace(dates, at(2026, 5, 10, 12))
	assert.Equal(t, StatusBroken, s.Status)
	assert.False(t, s.IsInGracePeriod)
	assert.Nil(t, s.GraceEndsAt)
	// the historical run is still reported for display
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.NextMilestone)
}

func TestBrokenWhenLastCheckinOlderThanYesterday(t *testing.T) {
	dates := []time.Time{day(2026, 5, 7), day(2026, 5, 6)}
	s := CalculateStreakWithGrace(dates, at(2026, 5, 10, 6))
	assert.Equal(t, StatusBroken, s.Status)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestCurrentStreakStopsAtFirstGap(t *testing.T) {
	dates := []time.Time{day(2026, 5, 10), day(2026, 5, 9), day(2026, 5, 7), day(2026, 5, 6), day(2026, 5, 5)}
	s := CalculateStreakWithGrace(dates, at(2026, 5, 10, 18))
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
}

func TestDuplicatesAndOrderDoNotMatter(t *testing.T) {
	dates := []time.Time{
		day(2026, 5, 8),
		at(2026, 5, 10, 7),
		day(2026, 5, 9),
		at(2026, 5, 10, 20),
		day(2026, 5, 8),
	}
	s := CalculateStreakWithGrace(dates, at(2026, 5, 10, 22))
	assert.Equal(t, StatusActiveToday, s.Status)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
}

func TestFutureCheckinTreatedAsToday(t *testing.T) {
	s := CalculateStreakWithGrace([]time.Time{day(2026, 5, 11)}, at(2026, 5, 10, 9))
	assert.Equal(t, StatusActiveToday, s.Status)
}

func TestCustomGraceCutoff(t *testing.T) {
	c := &Calculator{GraceCutoff: 18 * time.Hour}
	s := c.Calculate([]time.Time{day(2026, 5, 9)}, at(2026, 5, 10, 15))
	assert.Equal(t, StatusGracePeriod, s.Status)
	assert.Equal(t, at(2026, 5, 10, 18), *s.GraceEndsAt)

	// a zero value calculator falls back to noon
	s = (&Calculator{}).Calculate([]time.Time{day(2026, 5, 9)}, at(2026, 5, 10, 15))
	assert.Equal(t, StatusBroken, s.Status)
}

func TestDaysAreCountedAcrossDSTInUserZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2026-03-08 is the spring-forward day in New York
	dates := []time.Time{day(2026, 3, 9), day(2026, 3, 8), day(2026, 3, 7)}
	s := CalculateStreakWithGrace(dates, time.Date(2026, 3, 9, 23, 0, 0, 0, loc))
	assert.Equal(t, StatusActiveToday, s.Status)
	assert.Equal(t, 3, s.CurrentStreak)
}

func TestCalculateLongestStreak(t *testing.T) {
	dates := []time.Time{day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3), day(2026, 1, 5), day(2026, 1, 6)}
	assert.Equal(t, 3, CalculateLongestStreak(dates))

	withDupes := append([]time.Time{day(2026, 1, 2), day(2026, 1, 2)}, dates...)
	assert.Equal(t, 3, CalculateLongestStreak(withDupes))

	assert.Equal(t, 0, CalculateLongestStreak(nil))
	assert.Equal(t, 1, CalculateLongestStreak([]time.Time{day(2026, 1, 1)}))
}

func TestLongestStreakAcrossMonthAndYear(t *testing.T) {
	dates := []time.Time{day(2025, 12, 30), day(2025, 12, 31), day(2026, 1, 1), day(2026, 2, 28), day(2026, 3, 1)}
	assert.Equal(t, 3, CalculateLongestStreak(dates))
}

func TestNextMilestone(t *testing.T) {
	assert.Equal(t, 3, nextMilestone(0))
	assert.Equal(t, 7, nextMilestone(3))
	assert.Equal(t, 365, nextMilestone(100))
	assert.Equal(t, 0, nextMilestone(365))
}

func TestDeterministic(t *testing.T) {
	dates := []time.Time{day(2026, 5, 9), day(2026, 5, 8)}
	now := at(2026, 5, 10, 10)
	assert.Equal(t, CalculateStreakWithGrace(dates, now), CalculateStreakWithGrace(dates, now))
}
