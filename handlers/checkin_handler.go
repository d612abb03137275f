package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/types/calendar"
	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/services"
)

const (
	defaultListDays = 30
	maxListDays     = 365
)

type CheckinStore interface {
	UpsertCheckin(ctx context.Context, userID string, rec checkin.Record) (*checkin.Record, error)
	ListCheckins(ctx context.Context, userID string, since time.Time) ([]checkin.Record, error)
	GetCheckin(ctx context.Context, userID string, day time.Time) (*checkin.Record, error)
	DeleteCheckin(ctx context.Context, userID string, day time.Time) error
}

type CalendarSource interface {
	GetCalendar(ctx context.Context, userID string, year, month int, today time.Time) (*calendar.CalendarResponse, error)
}

type CheckinHandler struct {
	users    UserStore
	checkins CheckinStore
	calendar CalendarSource
	logger   logger.Logger
	now      func() time.Time
}

func NewCheckinHandler(users UserStore, checkins CheckinStore, cal CalendarSource, log logger.Logger) *CheckinHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckinHandler{
		users:    users,
		checkins: checkins,
		calendar: cal,
		logger:   log,
		now:      time.Now,
	}
}

func (h *CheckinHandler) CreateCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	var req checkin.CreateCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = u.Today(h.now()).Format(checkin.DateLayout)
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := req.ToRecord(u.ID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date")
		return
	}
	if rec.Date.After(u.Today(h.now())) {
		respondWithError(w, http.StatusBadRequest, "Cannot check in for a future date")
		return
	}

	saved, err := h.checkins.UpsertCheckin(ctx, u.ID, rec)
	if err != nil {
		h.logger.Errorf("CreateCheckin: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save check-in")
		return
	}

	respondWithJSON(w, http.StatusCreated, saved)
}

func (h *CheckinHandler) ListCheckins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	days := defaultListDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'days' must be a positive integer")
			return
		}
		days = min(n, maxListDays)
	}

	since := u.Today(h.now()).AddDate(0, 0, -(days - 1))
	records, err := h.checkins.ListCheckins(ctx, u.ID, since)
	if err != nil {
		h.logger.Errorf("ListCheckins: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch check-ins")
		return
	}

	respondWithJSON(w, http.StatusOK, checkin.SortDescending(records))
}

func (h *CheckinHandler) GetCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	day, err := checkin.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	rec, err := h.checkins.GetCheckin(ctx, u.ID, day)
	if err != nil {
		if errors.Is(err, services.ErrCheckinNotFound) {
			respondWithError(w, http.StatusNotFound, "Check-in not found")
			return
		}
		h.logger.Errorf("GetCheckin: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch check-in")
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

func (h *CheckinHandler) DeleteCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	day, err := checkin.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	if err := h.checkins.DeleteCheckin(ctx, u.ID, day); err != nil {
		if errors.Is(err, services.ErrCheckinNotFound) {
			respondWithError(w, http.StatusNotFound, "Check-in not found")
			return
		}
		h.logger.Errorf("DeleteCheckin: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete check-in")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCalendar defaults to the user's current month.
func (h *CheckinHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, ok := currentUser(ctx, w, h.users, h.logger)
	if !ok {
		return
	}

	today := u.Today(h.now())
	year, month := today.Year(), int(today.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = m
	}

	cal, err := h.calendar.GetCalendar(ctx, u.ID, year, month, today)
	if err != nil {
		h.logger.Errorf("GetCalendar: user=%s: %v", u.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}
