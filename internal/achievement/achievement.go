package achievement

import (
	"sort"

	"github.com/google/uuid"
)

type CriteriaType string

const (
	CriteriaStreak        CriteriaType = "streak"
	CriteriaLongestStreak CriteriaType = "longest_streak"
	CriteriaTotalCheckins CriteriaType = "total_checkins"
	CriteriaResilience    CriteriaType = "resilience"
	CriteriaWellness      CriteriaType = "wellness"
)

// catalogNamespace keeps achievement IDs stable across deploys.
var catalogNamespace = uuid.MustParse("6f1c7c1e-6a0b-4c1e-9d7e-3f0a2b9c5d11")

type Achievement struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Icon          string       `json:"icon"`
	CriteriaType  CriteriaType `json:"criteria_type"`
	CriteriaValue float64      `json:"criteria_value"`
}

type AchievementWithStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
	// Progress is how far along the user is, 0..1.
	Progress float64 `json:"progress"`
}

// Progress is the user state achievements are checked against.
type Progress struct {
	CurrentStreak   int
	LongestStreak   int
	TotalCheckins   int
	ResilienceScore float64
	BestScore       int
}

func (p Progress) value(c CriteriaType) float64 {
	switch c {
	case CriteriaStreak:
		return float64(p.CurrentStreak)
	case CriteriaLongestStreak:
		return float64(p.LongestStreak)
	case CriteriaTotalCheckins:
		return float64(p.TotalCheckins)
	case CriteriaResilience:
		return p.ResilienceScore
	case CriteriaWellness:
		return float64(p.BestScore)
	}
	return 0
}

func newAchievement(name, description, icon string, c CriteriaType, v float64) Achievement {
	return Achievement{
		ID:            uuid.NewSHA1(catalogNamespace, []byte(name)),
		Name:          name,
		Description:   description,
		Icon:          icon,
		CriteriaType:  c,
		CriteriaValue: v,
	}
}

var catalog = []Achievement{
	newAchievement("First Step", "Complete your first check-in", "🌱", CriteriaTotalCheckins, 1),
	newAchievement("Warming Up", "Check in 3 days in a row", "🔥", CriteriaStreak, 3),
	newAchievement("Week of Presence", "Check in 7 days in a row", "📅", CriteriaStreak, 7),
	newAchievement("Fortnight Flow", "Check in 14 days in a row", "🌊", CriteriaStreak, 14),
	newAchievement("Monthly Rhythm", "Reach a 30 day streak at any point", "🌙", CriteriaLongestStreak, 30),
	newAchievement("Centurion", "Reach a 100 day streak at any point", "🏛️", CriteriaLongestStreak, 100),
	newAchievement("Regular", "Log 25 check-ins", "📓", CriteriaTotalCheckins, 25),
	newAchievement("Devoted", "Log 100 check-ins", "📚", CriteriaTotalCheckins, 100),
	newAchievement("Steady Ground", "Reach a resilience score of 7", "🪨", CriteriaResilience, 7),
	newAchievement("Unshakeable", "Reach a resilience score of 9", "🏔️", CriteriaResilience, 9),
	newAchievement("Thriving", "Score 70 or more on a day", "🌿", CriteriaWellness, 70),
	newAchievement("Radiant", "Score 85 or more on a day", "✨", CriteriaWellness, 85),
}

// Catalog returns a copy of every known achievement.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Evaluate marks each catalog entry as unlocked or not for p. Unlocked
// entries come first, then by how close the user is.
func Evaluate(p Progress) []AchievementWithStatus {
	out := make([]AchievementWithStatus, 0, len(catalog))
	for _, a := range catalog {
		v := p.value(a.CriteriaType)
		progress := 1.0
		if a.CriteriaValue > 0 {
			progress = min(v/a.CriteriaValue, 1)
		}
		if progress < 0 {
			progress = 0
		}
		out = append(out, AchievementWithStatus{
			Achievement: a,
			Unlocked:    v >= a.CriteriaValue,
			Progress:    progress,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Unlocked != out[j].Unlocked {
			return out[i].Unlocked
		}
		return out[i].Progress > out[j].Progress
	})
	return out
}

// Unlocked filters Evaluate down to the unlocked entries.
func Unlocked(p Progress) []Achievement {
	var out []Achievement
	for _, a := range Evaluate(p) {
		if a.Unlocked {
			out = append(out, a.Achievement)
		}
	}
	return out
}
