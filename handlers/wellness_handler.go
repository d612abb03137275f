package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"resonanceAPI/internal/achievement"
	"resonanceAPI/internal/insight"
	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/resilience"
	"resonanceAPI/internal/stats"
	"resonanceAPI/internal/streak"
	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/internal/types/user"
	"resonanceAPI/internal/wellness"
	"resonanceAPI/services"
)

// WellnessEngine is the read side of the wellness service.
type WellnessEngine interface {
	ScoreInput(in wellness.Input, opts wellness.Options) wellness.Result
	Score(ctx context.Context, userID string, day time.Time, opts wellness.Options) (*wellness.Result, error)
	Resilience(ctx context.Context, userID string) (resilience.Profile, error)
	Streak(ctx context.Context, userID string, now time.Time) (streak.State, error)
	Insights(ctx context.Context, userID string) ([]insight.Insight, error)
	Achievements(ctx context.Context, userID string, now time.Time) ([]achievement.AchievementWithStatus, error)
	Summary(ctx context.Context, userID string, now time.Time, mode wellness.Mode) (*stats.Summary, error)
}

type ScoreRequest struct {
	Input   wellness.Input   `json:"input"`
	Options wellness.Options `json:"options"`
}

type WellnessHandler struct {
	users    UserStore
	wellness WellnessEngine
	logger   logger.Logger
	now      func() time.Time
}

func NewWellnessHandler(users UserStore, engine WellnessEngine, log logger.Logger) *WellnessHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WellnessHandler{
		users:    users,
		wellness: engine,
		logger:   log,
		now:      time.Now,
	}
}

// localNow is the current instant in the user's timezone.
func (h *WellnessHandler) localNow(u *user.User) time.Time {
	return h.now().In(u.Location())
}

// modeFor prefers an explicit ?mode over the user's saved preference.
func modeFor(r *http.Request, u *user.User) wellness.Mode {
	if m := r.URL.Query().Get("mode"); m != "" {
		return wellness.ParseMode(m)
	}
	if u.ScoreMode != "" {
		return wellness.ParseMode(u.ScoreMode)
	}
	return ""
}

func (h *WellnessHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	day := u.Today(h.now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := checkin.ParseDay(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = d
	}

	res, err := h.wellness.Score(ctx, u.ID, day, wellness.Options{Mode: modeFor(r, u)})
	if err != nil {
		if errors.Is(err, services.ErrCheckinNotFound) {
			respondWithError(w, http.StatusNotFound, "No check-in for that day")
			return
		}
		h.logger.Errorf("GetScore: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute score")
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// ScoreInput scores an ad-hoc set of ratings without saving anything.
func (h *WellnessHandler) ScoreInput(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	respondWithJSON(w, http.StatusOK, h.wellness.ScoreInput(req.Input, req.Options))
}

func (h *WellnessHandler) GetResilience(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	profile, err := h.wellness.Resilience(ctx, u.ID)
	if err != nil {
		h.logger.Errorf("GetResilience: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute resilience")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *WellnessHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	state, err := h.wellness.Streak(ctx, u.ID, h.localNow(u))
	if err != nil {
		h.logger.Errorf("GetStreak: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute streak")
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

func (h *WellnessHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	insights, err := h.wellness.Insights(ctx, u.ID)
	if err != nil {
		h.logger.Errorf("GetInsights: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	respondWithJSON(w, http.StatusOK, insights)
}

func (h *WellnessHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	achievements, err := h.wellness.Achievements(ctx, u.ID, h.localNow(u))
	if err != nil {
		h.logger.Errorf("GetAchievements: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

func (h *WellnessHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	summary, err := h.wellness.Summary(ctx, u.ID, h.localNow(u), modeFor(r, u))
	if err != nil {
		h.logger.Errorf("GetSummary: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GetDaysStats reports days checked in for ?period=week|month|year|all_time
// (default week).
func (h *WellnessHandler) GetDaysStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	switch period {
	case "":
		period = "week"
	case "week", "month", "year", "all_time":
	default:
		respondWithError(w, http.StatusBadRequest, "Query parameter 'period' must be week, month, year or all_time")
		return
	}

	now := h.localNow(u)
	summary, err := h.wellness.Summary(ctx, u.ID, now, modeFor(r, u))
	if err != nil {
		h.logger.Errorf("GetDaysStats: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats.Period(summary.Stats, period, checkin.Day(now)))
}
