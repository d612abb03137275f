// Package stats holds the aggregate views served alongside derived metrics.
package stats

import (
	"time"

	"resonanceAPI/internal/achievement"
	"resonanceAPI/internal/insight"
	"resonanceAPI/internal/resilience"
	"resonanceAPI/internal/streak"
	"resonanceAPI/internal/wellness"
)

type DaysStat struct {
	Period        string `json:"period"` // "week", "month", "year", "all_time"
	DaysCheckedIn int    `json:"days_checked_in"`
	TotalDays     int    `json:"total_days"`
}

type CheckinStats struct {
	TodayStatus       bool `json:"today_status"`
	DaysThisWeek      int  `json:"days_this_week"`
	DaysThisMonth     int  `json:"days_this_month"`
	DaysThisYear      int  `json:"days_this_year"`
	TotalCheckins     int  `json:"total_checkins"`
	CurrentStreak     int  `json:"current_streak"`
	LongestStreak     int  `json:"longest_streak"`
	AchievementsCount int  `json:"achievements_count"`
}

type Summary struct {
	Today         *wellness.Result                    `json:"today,omitempty"`
	AverageScore7 *float64                            `json:"average_score_7d,omitempty"`
	Resilience    resilience.Profile                  `json:"resilience"`
	Streak        streak.State                        `json:"streak"`
	Insights      []insight.Insight                   `json:"insights"`
	Achievements  []achievement.AchievementWithStatus `json:"achievements"`
	Stats         CheckinStats                        `json:"stats"`
}

// Count tallies check-in days in the week (Monday start), month and year
// containing today. dates and today are civil dates.
func Count(dates []time.Time, today time.Time) CheckinStats {
	y, m, d := today.Date()
	todayDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(todayDay.Weekday()) + 6) % 7
	weekStart := todayDay.AddDate(0, 0, -offset)

	seen := make(map[time.Time]bool, len(dates))
	var s CheckinStats
	for _, t := range dates {
		dy, dm, dd := t.Date()
		day := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
		if seen[day] {
			continue
		}
		seen[day] = true
		s.TotalCheckins++

		if day.After(todayDay) {
			continue
		}
		if day.Equal(todayDay) {
			s.TodayStatus = true
		}
		if !day.Before(weekStart) {
			s.DaysThisWeek++
		}
		if dy == y && dm == m {
			s.DaysThisMonth++
		}
		if dy == y {
			s.DaysThisYear++
		}
	}
	return s
}

// Period reports check-in days against the elapsed days of a period.
func Period(s CheckinStats, period string, today time.Time) DaysStat {
	switch period {
	case "week":
		return DaysStat{Period: period, DaysCheckedIn: s.DaysThisWeek, TotalDays: (int(today.Weekday())+6)%7 + 1}
	case "month":
		return DaysStat{Period: period, DaysCheckedIn: s.DaysThisMonth, TotalDays: today.Day()}
	case "year":
		return DaysStat{Period: period, DaysCheckedIn: s.DaysThisYear, TotalDays: today.YearDay()}
	}
	return DaysStat{Period: "all_time", DaysCheckedIn: s.TotalCheckins, TotalDays: s.TotalCheckins}
}
