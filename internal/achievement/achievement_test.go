package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNewUser(t *testing.T) {
	got := Evaluate(Progress{})
	require.Len(t, got, len(Catalog()))
	for _, a := range got {
		assert.False(t, a.Unlocked, a.Name)
		assert.Equal(t, 0.0, a.Progress, a.Name)
	}
	assert.Empty(t, Unlocked(Progress{}))
}

func TestEvaluateUnlocksByCriteria(t *testing.T) {
	p := Progress{CurrentStreak: 7, LongestStreak: 12, TotalCheckins: 30, ResilienceScore: 7.4, BestScore: 72}
	names := map[string]bool{}
	for _, a := range Unlocked(p) {
		names[a.Name] = true
	}

	assert.True(t, names["First Step"])
	assert.True(t, names["Warming Up"])
	assert.True(t, names["Week of Presence"])
	assert.False(t, names["Fortnight Flow"])
	assert.False(t, names["Monthly Rhythm"])
	assert.True(t, names["Regular"])
	assert.True(t, names["Steady Ground"])
	assert.False(t, names["Unshakeable"])
	assert.True(t, names["Thriving"])
	assert.False(t, names["Radiant"])
}

func TestEvaluateOrdersUnlockedFirst(t *testing.T) {
	got := Evaluate(Progress{TotalCheckins: 1, CurrentStreak: 2})
	require.True(t, got[0].Unlocked)
	assert.Equal(t, "First Step", got[0].Name)
	// the 3-day streak is the closest locked one
	assert.False(t, got[1].Unlocked)
	assert.Equal(t, "Warming Up", got[1].Name)
	assert.InDelta(t, 2.0/3.0, got[1].Progress, 1e-9)
}

func TestCatalogIDsAreStableAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Catalog() {
		assert.False(t, seen[a.ID.String()], a.Name)
		seen[a.ID.String()] = true
	}
	assert.Equal(t, Catalog()[0].ID, newAchievement("First Step", "", "", CriteriaTotalCheckins, 1).ID)
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "changed"
	assert.Equal(t, "First Step", Catalog()[0].Name)
}
