package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"resonanceAPI/internal/types/checkin"
	"resonanceAPI/internal/types/user"
	"resonanceAPI/middleware"
	"resonanceAPI/services"
)

// fixed "now": Saturday 2026-06-20 09:00 UTC
var testNow = time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func f(v float64) *float64 { return &v }

type fakeUsers struct {
	mu      sync.Mutex
	byClerk map[string]*user.User
	err     error
	created []*user.CreateUserRequest
	updated []*user.UpdateProfileRequest
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	fu := &fakeUsers{byClerk: map[string]*user.User{}}
	for _, u := range users {
		fu.byClerk[u.ClerkID] = u
	}
	return fu
}

func (f *fakeUsers) GetOrCreateUser(_ context.Context, clerkID string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byClerk[clerkID]; ok {
		return u, nil
	}
	u := &user.User{ID: "id-" + clerkID, ClerkID: clerkID, Timezone: "UTC", ScoreMode: "pilot"}
	f.byClerk[clerkID] = u
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, req *user.CreateUserRequest) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	u := &user.User{ID: "id-" + req.ClerkID, ClerkID: req.ClerkID, Email: req.Email, Username: req.Username}
	f.byClerk[req.ClerkID] = u
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byClerk[clerkID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	f.updated = append(f.updated, req)
	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Timezone != "" {
		u.Timezone = req.Timezone
	}
	if req.ScoreMode != "" {
		u.ScoreMode = req.ScoreMode
	}
	return u, nil
}

func (f *fakeUsers) DeleteUserByClerkID(_ context.Context, clerkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byClerk[clerkID]; !ok {
		return services.ErrUserNotFound
	}
	delete(f.byClerk, clerkID)
	return nil
}

// memCheckins is an in-memory check-in store that also satisfies the
// wellness service's CheckinStore.
type memCheckins struct {
	mu      sync.Mutex
	records map[string]map[time.Time]checkin.Record
	err     error
}

func newMemCheckins() *memCheckins {
	return &memCheckins{records: map[string]map[time.Time]checkin.Record{}}
}

func (m *memCheckins) UpsertCheckin(_ context.Context, userID string, rec checkin.Record) (*checkin.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.records[userID] == nil {
		m.records[userID] = map[time.Time]checkin.Record{}
	}
	day := checkin.Day(rec.Date)
	rec.UserID = userID
	rec.Date = day
	if prev, ok := m.records[userID][day]; ok {
		rec = checkin.Merge(prev, rec)
	}
	m.records[userID][day] = rec
	return &rec, nil
}

func (m *memCheckins) ListCheckins(_ context.Context, userID string, since time.Time) ([]checkin.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []checkin.Record{}
	for d, r := range m.records[userID] {
		if !d.Before(checkin.Day(since)) {
			out = append(out, r)
		}
	}
	return checkin.SortAscending(out), nil
}

func (m *memCheckins) ListRecentCheckins(_ context.Context, userID string, limit int) ([]checkin.Record, error) {
	recs, err := m.ListCheckins(context.Background(), userID, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs, nil
}

func (m *memCheckins) ListCheckinDates(_ context.Context, userID string) ([]time.Time, error) {
	recs, err := m.ListCheckins(context.Background(), userID, time.Time{})
	if err != nil {
		return nil, err
	}
	return checkin.Dates(checkin.SortDescending(recs)), nil
}

func (m *memCheckins) GetCheckin(_ context.Context, userID string, day time.Time) (*checkin.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[userID][checkin.Day(day)]
	if !ok {
		return nil, services.ErrCheckinNotFound
	}
	return &r, nil
}

func (m *memCheckins) DeleteCheckin(_ context.Context, userID string, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[userID][checkin.Day(day)]; !ok {
		return services.ErrCheckinNotFound
	}
	delete(m.records[userID], checkin.Day(day))
	return nil
}

// do runs a request through a router carrying one route, authenticated as
// clerkID when it is non-empty.
func do(method, pattern, target, body, clerkID string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(pattern, h).Methods(method)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if clerkID != "" {
		req = req.WithContext(middleware.WithClerkID(req.Context(), clerkID))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
