package checkin

import (
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// Record is one daily check-in. Ratings are optional; nil means the user
// skipped that question.
type Record struct {
	ID     string    `json:"id,omitempty" db:"id"`
	UserID string    `json:"userId,omitempty" db:"user_id"`
	Date   time.Time `json:"date" db:"date"`

	Mood                 *float64 `json:"mood,omitempty" db:"mood"`
	Energy               *float64 `json:"energy,omitempty" db:"energy"`
	Sleep                *float64 `json:"sleep,omitempty" db:"sleep_hours"`        // hours
	Exercise             *float64 `json:"exercise,omitempty" db:"exercise_minutes"` // minutes
	StressLevel          *float64 `json:"stressLevel,omitempty" db:"stress_level"`
	Connection           *float64 `json:"connection,omitempty" db:"connection"`
	Gratitude            *float64 `json:"gratitude,omitempty" db:"gratitude"`
	ResilienceSelfReport *float64 `json:"resilienceSelfReport,omitempty" db:"resilience_self_report"`
	Purpose              *float64 `json:"purpose,omitempty" db:"purpose"`
	GoodDeeds            *float64 `json:"goodDeeds,omitempty" db:"good_deeds"`
	ScreenTimeHours      *float64 `json:"screenTimeHours,omitempty" db:"screen_time_hours"`
	Reflection           *float64 `json:"reflection,omitempty" db:"reflection"`
	Focus                *float64 `json:"focus,omitempty" db:"focus"`

	MeditationDone     bool `json:"meditationDone" db:"meditation_done"`
	HormonalShiftToday bool `json:"hormonalShiftToday" db:"hormonal_shift_today"`

	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// Day truncates t to its civil date, expressed as UTC midnight. The civil
// date is read in t's own location so a stored DATE never shifts.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// Merge folds b into a. Non-nil ratings from b win, flags are OR-ed.
func Merge(a, b Record) Record {
	out := a
	pick := func(dst **float64, src *float64) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	pick(&out.Mood, b.Mood)
	pick(&out.Energy, b.Energy)
	pick(&out.Sleep, b.Sleep)
	pick(&out.Exercise, b.Exercise)
	pick(&out.StressLevel, b.StressLevel)
	pick(&out.Connection, b.Connection)
	pick(&out.Gratitude, b.Gratitude)
	pick(&out.ResilienceSelfReport, b.ResilienceSelfReport)
	pick(&out.Purpose, b.Purpose)
	pick(&out.GoodDeeds, b.GoodDeeds)
	pick(&out.ScreenTimeHours, b.ScreenTimeHours)
	pick(&out.Reflection, b.Reflection)
	pick(&out.Focus, b.Focus)
	out.MeditationDone = a.MeditationDone || b.MeditationDone
	out.HormonalShiftToday = a.HormonalShiftToday || b.HormonalShiftToday
	if b.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = b.UpdatedAt
	}
	return out
}

// MergeSameDay collapses records that share a civil date and returns them
// ascending. Later entries in the input win on conflicting ratings.
func MergeSameDay(records []Record) []Record {
	if len(records) == 0 {
		return []Record{}
	}
	byDay := make(map[time.Time]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := Day(r.Date)
		if idx, ok := byDay[key]; ok {
			out[idx] = Merge(out[idx], r)
			continue
		}
		r.Date = key
		byDay[key] = len(out)
		out = append(out, r)
	}
	sortRecords(out, true)
	return out
}

// SortAscending returns a copy sorted oldest first.
func SortAscending(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sortRecords(out, true)
	return out
}

// SortDescending returns a copy sorted newest first.
func SortDescending(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sortRecords(out, false)
	return out
}

func sortRecords(records []Record, asc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		if asc {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Date.After(records[j].Date)
	})
}

// Dates extracts the check-in dates, preserving order.
func Dates(records []Record) []time.Time {
	out := make([]time.Time, len(records))
	for i, r := range records {
		out[i] = r.Date
	}
	return out
}
