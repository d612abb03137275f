package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/types/checkin"
)

// RecordSetListener is told whenever a user's check-ins change.
type RecordSetListener interface {
	RecordSetChanged(ctx context.Context, userID string)
}

type CheckinService struct {
	db     DBTX
	logger logger.Logger

	mu        sync.RWMutex
	listeners []RecordSetListener
}

func NewCheckinService(db DBTX, log logger.Logger) *CheckinService {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckinService{db: db, logger: log}
}

func (s *CheckinService) Subscribe(l RecordSetListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *CheckinService) notify(ctx context.Context, userID string) {
	s.mu.RLock()
	listeners := make([]RecordSetListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.RecordSetChanged(ctx, userID)
	}
}

const checkinColumns = `id, user_id, date, mood, energy, sleep_hours, exercise_minutes, stress_level,
	connection, gratitude, resilience_self_report, purpose, good_deeds, screen_time_hours,
	reflection, focus, meditation_done, hormonal_shift_today, created_at, updated_at`

func scanCheckin(row pgx.Row) (*checkin.Record, error) {
	r := &checkin.Record{}
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Date,
		&r.Mood,
		&r.Energy,
		&r.Sleep,
		&r.Exercise,
		&r.StressLevel,
		&r.Connection,
		&r.Gratitude,
		&r.ResilienceSelfReport,
		&r.Purpose,
		&r.GoodDeeds,
		&r.ScreenTimeHours,
		&r.Reflection,
		&r.Focus,
		&r.MeditationDone,
		&r.HormonalShiftToday,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Date = checkin.Day(r.Date)
	return r, nil
}

// UpsertCheckin stores rec for its day. A second check-in on the same day
// is merged into the first: answered fields win, flags are OR-ed.
func (s *CheckinService) UpsertCheckin(ctx context.Context, userID string, rec checkin.Record) (*checkin.Record, error) {
	query := `
	INSERT INTO checkins (id, user_id, date, mood, energy, sleep_hours, exercise_minutes, stress_level,
		connection, gratitude, resilience_self_report, purpose, good_deeds, screen_time_hours,
		reflection, focus, meditation_done, hormonal_shift_today)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (user_id, date) DO UPDATE SET
		mood = COALESCE(EXCLUDED.mood, checkins.mood),
		energy = COALESCE(EXCLUDED.energy, checkins.energy),
		sleep_hours = COALESCE(EXCLUDED.sleep_hours, checkins.sleep_hours),
		exercise_minutes = COALESCE(EXCLUDED.exercise_minutes, checkins.exercise_minutes),
		stress_level = COALESCE(EXCLUDED.stress_level, checkins.stress_level),
		connection = COALESCE(EXCLUDED.connection, checkins.connection),
		gratitude = COALESCE(EXCLUDED.gratitude, checkins.gratitude),
		resilience_self_report = COALESCE(EXCLUDED.resilience_self_report, checkins.resilience_self_report),
		purpose = COALESCE(EXCLUDED.purpose, checkins.purpose),
		good_deeds = COALESCE(EXCLUDED.good_deeds, checkins.good_deeds),
		screen_time_hours = COALESCE(EXCLUDED.screen_time_hours, checkins.screen_time_hours),
		reflection = COALESCE(EXCLUDED.reflection, checkins.reflection),
		focus = COALESCE(EXCLUDED.focus, checkins.focus),
		meditation_done = checkins.meditation_done OR EXCLUDED.meditation_done,
		hormonal_shift_today = checkins.hormonal_shift_today OR EXCLUDED.hormonal_shift_today,
		updated_at = NOW()
	RETURNING ` + checkinColumns

	saved, err := scanCheckin(s.db.QueryRow(
		ctx,
		query,
		uuid.New().String(),
		userID,
		checkin.Day(rec.Date),
		rec.Mood,
		rec.Energy,
		rec.Sleep,
		rec.Exercise,
		rec.StressLevel,
		rec.Connection,
		rec.Gratitude,
		rec.ResilienceSelfReport,
		rec.Purpose,
		rec.GoodDeeds,
		rec.ScreenTimeHours,
		rec.Reflection,
		rec.Focus,
		rec.MeditationDone,
		rec.HormonalShiftToday,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save checkin: %w", err)
	}

	s.logger.Infof("checkin saved user=%s date=%s", userID, saved.Date.Format(checkin.DateLayout))
	s.notify(ctx, userID)
	return saved, nil
}

// ListCheckins returns the user's check-ins on or after since, oldest first.
func (s *CheckinService) ListCheckins(ctx context.Context, userID string, since time.Time) ([]checkin.Record, error) {
	query := `SELECT ` + checkinColumns + `
	FROM checkins
	WHERE user_id = $1 AND date >= $2
	ORDER BY date ASC
	`

	rows, err := s.db.Query(ctx, query, userID, checkin.Day(since))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkins: %w", err)
	}
	defer rows.Close()

	records := []checkin.Record{}
	for rows.Next() {
		r, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkins: %w", err)
	}

	return records, nil
}

// ListRecentCheckins returns the user's newest limit check-ins, oldest first,
// however far back they go.
func (s *CheckinService) ListRecentCheckins(ctx context.Context, userID string, limit int) ([]checkin.Record, error) {
	query := `SELECT ` + checkinColumns + `
	FROM checkins
	WHERE user_id = $1
	ORDER BY date DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent checkins: %w", err)
	}
	defer rows.Close()

	records := []checkin.Record{}
	for rows.Next() {
		r, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkins: %w", err)
	}

	slices.Reverse(records)
	return records, nil
}

// ListCheckinDates returns every check-in date, newest first.
func (s *CheckinService) ListCheckinDates(ctx context.Context, userID string) ([]time.Time, error) {
	rows, err := s.db.Query(ctx, `SELECT date FROM checkins WHERE user_id = $1 ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkin dates: %w", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dates = append(dates, checkin.Day(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkin dates: %w", err)
	}

	return dates, nil
}

func (s *CheckinService) GetCheckin(ctx context.Context, userID string, day time.Time) (*checkin.Record, error) {
	query := `SELECT ` + checkinColumns + `
	FROM checkins
	WHERE user_id = $1 AND date = $2
	`

	r, err := scanCheckin(s.db.QueryRow(ctx, query, userID, checkin.Day(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCheckinNotFound
		}
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}
	return r, nil
}

func (s *CheckinService) DeleteCheckin(ctx context.Context, userID string, day time.Time) error {
	result, err := s.db.Exec(ctx, `DELETE FROM checkins WHERE user_id = $1 AND date = $2`, userID, checkin.Day(day))
	if err != nil {
		return fmt.Errorf("failed to delete checkin: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCheckinNotFound
	}

	s.logger.Infof("checkin deleted user=%s date=%s", userID, day.Format(checkin.DateLayout))
	s.notify(ctx, userID)
	return nil
}
