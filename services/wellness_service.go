package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resonanceAPI/internal/achievement"
	"resonanceAPI/internal/cache"
	"resonanceAPI/internal/insight"
	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/metrics"
	"resonanceAPI/internal/resilience"
	"resonanceAPI/internal/stats"
	"resonanceAPI/internal/streak"
	"resonanceAPI/internal/types/calendar"
	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/internal/wellness"
	"resonanceAPI/utils"
)

// SnapshotEntries is how many of the newest check-ins a snapshot holds,
// twice the 28-entry resilience and correlation windows, however sparse.
const SnapshotEntries = 56

// CheckinStore is what the wellness service reads check-ins from.
type CheckinStore interface {
	ListCheckins(ctx context.Context, userID string, since time.Time) ([]checkin.Record, error)
	ListRecentCheckins(ctx context.Context, userID string, limit int) ([]checkin.Record, error)
	ListCheckinDates(ctx context.Context, userID string) ([]time.Time, error)
	GetCheckin(ctx context.Context, userID string, day time.Time) (*checkin.Record, error)
}

// Snapshot is an immutable copy of a user's recent history. Engines only
// ever see a snapshot, never live rows.
type Snapshot struct {
	UserID  string           `json:"userId"`
	Records []checkin.Record `json:"records"`
	Dates   []time.Time      `json:"dates"`
	BuiltAt time.Time        `json:"builtAt"`
}

type WellnessServiceConfig struct {
	SnapshotTTL time.Duration
	DefaultMode wellness.Mode
	// Now overrides the clock used for snapshot windows and timings.
	Now func() time.Time
}

type WellnessService struct {
	store   CheckinStore
	cache   cache.Cache
	scorer  *wellness.Scorer
	metrics metrics.Recorder
	logger  logger.Logger
	cfg     WellnessServiceConfig
	now     func() time.Time
}

func NewWellnessService(
	store CheckinStore,
	c cache.Cache,
	scorer *wellness.Scorer,
	rec metrics.Recorder,
	log logger.Logger,
	cfg WellnessServiceConfig,
) *WellnessService {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if scorer == nil {
		scorer = wellness.NewScorer(nil)
	}
	if rec == nil {
		rec = metrics.Nop()
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = wellness.ModePilot
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &WellnessService{
		store:   store,
		cache:   c,
		scorer:  scorer,
		metrics: rec,
		logger:  log,
		cfg:     cfg,
		now:     cfg.Now,
	}
}

func snapshotKey(userID string) string {
	return "snapshot:" + userID
}

// RecordSetChanged drops the cached snapshot and rebuilds it so the next
// read sees the new record set.
func (s *WellnessService) RecordSetChanged(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, snapshotKey(userID)); err != nil {
		s.logger.Warnf("failed to drop snapshot for user %s: %v", userID, err)
	}
	if _, err := s.rebuild(ctx, userID); err != nil {
		s.logger.Errorf("failed to rebuild snapshot for user %s: %v", userID, err)
		return
	}
	s.metrics.RecordSnapshotRebuild()
}

// Snapshot returns the cached snapshot, building it on a miss.
func (s *WellnessService) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	b, err := s.cache.Get(ctx, snapshotKey(userID))
	switch {
	case err == nil:
		snap := &Snapshot{}
		if jerr := json.Unmarshal(b, snap); jerr == nil {
			s.metrics.RecordSnapshot(true)
			return snap, nil
		}
		s.logger.Warnf("discarding unreadable snapshot for user %s", userID)
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warnf("snapshot cache unavailable for user %s: %v", userID, err)
	}

	s.metrics.RecordSnapshot(false)
	return s.rebuild(ctx, userID)
}

func (s *WellnessService) rebuild(ctx context.Context, userID string) (*Snapshot, error) {
	records, err := s.store.ListRecentCheckins(ctx, userID, SnapshotEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkins: %w", err)
	}
	dates, err := s.store.ListCheckinDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkin dates: %w", err)
	}

	snap := &Snapshot{
		UserID:  userID,
		Records: checkin.MergeSameDay(records),
		Dates:   dates,
		BuiltAt: s.now(),
	}

	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, snapshotKey(userID), b, s.cfg.SnapshotTTL); err != nil {
		s.logger.Warnf("failed to cache snapshot for user %s: %v", userID, err)
	}
	return snap, nil
}

func (s *WellnessService) observe(kind string, start time.Time) {
	s.metrics.RecordComputation(kind, s.now().Sub(start))
}

func (s *WellnessService) resolveMode(m wellness.Mode) wellness.Mode {
	if m == "" {
		return s.cfg.DefaultMode
	}
	return wellness.ParseMode(string(m))
}

// ScoreInput scores ad-hoc ratings without touching storage.
func (s *WellnessService) ScoreInput(in wellness.Input, opts wellness.Options) wellness.Result {
	start := s.now()
	defer s.observe(metrics.KindScore, start)

	opts.Mode = s.resolveMode(opts.Mode)
	r := s.scorer.Score(in, opts)
	s.metrics.RecordScore(string(r.Mode), r.Score)
	return r
}

// Score scores the user's check-in for day. The record's hormonal-shift
// flag turns on adaptation even when opts does not.
func (s *WellnessService) Score(ctx context.Context, userID string, day time.Time, opts wellness.Options) (*wellness.Result, error) {
	rec, err := s.recordFor(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	opts.HormonalShiftToday = opts.HormonalShiftToday || rec.HormonalShiftToday
	r := s.ScoreInput(wellness.InputFromRecord(*rec), opts)
	return &r, nil
}

func (s *WellnessService) recordFor(ctx context.Context, userID string, day time.Time) (*checkin.Record, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range snap.Records {
		if checkin.SameDay(snap.Records[i].Date, day) {
			rec := snap.Records[i]
			return &rec, nil
		}
	}
	// older than the newest SnapshotEntries check-ins
	return s.store.GetCheckin(ctx, userID, day)
}

func (s *WellnessService) Resilience(ctx context.Context, userID string) (resilience.Profile, error) {
	start := s.now()
	defer s.observe(metrics.KindResilience, start)

	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return resilience.Profile{}, err
	}
	return resilience.ComputeResilience(snap.Records), nil
}

// Streak evaluates the streak at now. now should carry the user's location
// so "today" and the grace cutoff are local.
func (s *WellnessService) Streak(ctx context.Context, userID string, now time.Time) (streak.State, error) {
	start := s.now()
	defer s.observe(metrics.KindStreak, start)

	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return streak.State{}, err
	}
	return streak.CalculateStreakWithGrace(snap.Dates, now), nil
}

func (s *WellnessService) Insights(ctx context.Context, userID string) ([]insight.Insight, error) {
	start := s.now()
	defer s.observe(metrics.KindInsights, start)

	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return insight.Generate(snap.Records), nil
}

// Achievements evaluates the catalog against the snapshot.
func (s *WellnessService) Achievements(ctx context.Context, userID string, now time.Time) ([]achievement.AchievementWithStatus, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return achievement.Evaluate(s.progress(snap, now)), nil
}

func (s *WellnessService) progress(snap *Snapshot, now time.Time) achievement.Progress {
	st := streak.CalculateStreakWithGrace(snap.Dates, now)
	current := st.CurrentStreak
	if st.Status == streak.StatusBroken {
		current = 0
	}

	best := 0
	for _, r := range snap.Records {
		best = max(best, s.pilotScore(r))
	}

	return achievement.Progress{
		CurrentStreak:   current,
		LongestStreak:   st.LongestStreak,
		TotalCheckins:   len(snap.Dates),
		ResilienceScore: resilience.ComputeResilience(snap.Records).Score,
		BestScore:       best,
	}
}

func (s *WellnessService) pilotScore(r checkin.Record) int {
	return s.scorer.Score(wellness.InputFromRecord(r), wellness.OptionsFromRecord(r, wellness.ModePilot)).Score
}

// Summary bundles everything the home screen shows. now should carry the
// user's location.
func (s *WellnessService) Summary(ctx context.Context, userID string, now time.Time, mode wellness.Mode) (*stats.Summary, error) {
	start := s.now()
	defer s.observe(metrics.KindSummary, start)

	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	mode = s.resolveMode(mode)
	today := checkin.Day(now)
	summary := &stats.Summary{
		Resilience:   resilience.ComputeResilience(snap.Records),
		Streak:       streak.CalculateStreakWithGrace(snap.Dates, now),
		Insights:     insight.Generate(snap.Records),
		Achievements: achievement.Evaluate(s.progress(snap, now)),
		Stats:        stats.Count(snap.Dates, today),
	}
	summary.Stats.CurrentStreak = summary.Streak.CurrentStreak
	summary.Stats.LongestStreak = summary.Streak.LongestStreak
	for _, a := range summary.Achievements {
		if a.Unlocked {
			summary.Stats.AchievementsCount++
		}
	}

	var scores []int
	for _, r := range snap.Records {
		res := s.scorer.Score(wellness.InputFromRecord(r), wellness.OptionsFromRecord(r, mode))
		if checkin.SameDay(r.Date, today) {
			summary.Today = &res
		}
		if !r.Date.After(today) && r.Date.After(today.AddDate(0, 0, -7)) {
			scores = append(scores, res.Score)
		}
	}
	if len(scores) > 0 {
		total := 0
		for _, sc := range scores {
			total += sc
		}
		summary.AverageScore7 = utils.Float(utils.RoundTo(float64(total)/float64(len(scores)), 1))
	}

	return summary, nil
}

// GetCalendar lists every day of the month with its pilot score.
func (s *WellnessService) GetCalendar(ctx context.Context, userID string, year, month int, today time.Time) (*calendar.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	records, err := s.store.ListCheckins(ctx, userID, startDate)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]checkin.Record)
	for _, r := range checkin.MergeSameDay(records) {
		if r.Date.After(endDate) {
			break
		}
		byDay[r.Date] = r
	}

	todayDay := checkin.Day(today)
	resp := &calendar.CalendarResponse{Year: year, Month: month}
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		day := &calendar.CalendarDay{Date: d, IsToday: d.Equal(todayDay)}
		if r, ok := byDay[d]; ok {
			day.CheckedIn = true
			score := s.pilotScore(r)
			day.Score = &score
			resp.DaysCheckedIn++
		}
		resp.Days = append(resp.Days, day)
	}

	return resp, nil
}
