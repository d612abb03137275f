package calendar

import "time"

type CalendarDay struct {
	Date      time.Time `json:"date" db:"date"`
	CheckedIn bool      `json:"checked_in" db:"checked_in"`
	IsToday   bool      `json:"is_today"`

	// Score is the day's pilot resonance score; nil when there is no check-in.
	Score *int `json:"score,omitempty"`
}

type CalendarResponse struct {
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	DaysCheckedIn int            `json:"days_checked_in"`
	Days          []*CalendarDay `json:"days"`
}
