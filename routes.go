package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resonanceAPI/handlers"
	"resonanceAPI/middleware"
)

type routerDeps struct {
	users    *handlers.UserHandler
	checkins *handlers.CheckinHandler
	wellness *handlers.WellnessHandler
	webhooks *handlers.WebhookHandler

	auth        func(http.Handler) http.Handler
	limiter     *middleware.RateLimiter
	httpMetrics *middleware.HTTPMetrics
	requestLog  func(http.Handler) http.Handler
	gatherer    prometheus.Gatherer
	metricsUser string
	metricsPass string
	ping        func(ctx context.Context) error
}

const datePattern = "{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}"

func newRouter(d routerDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(d.requestLog)
	r.Use(d.limiter.Middleware)
	r.Use(d.httpMetrics.Monitor)

	private := middleware.BasicAuth(d.metricsUser, d.metricsPass)
	r.Handle("/metrics", private(promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{})))

	debug := r.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(private)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").HandlerFunc(pprof.Index)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := d.ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "resonance-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", d.webhooks.HandleClerkWebhook).Methods("POST")

	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(d.auth)

	protected.HandleFunc("/user", d.users.GetProfile).Methods("GET")
	protected.HandleFunc("/user", d.users.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user", d.users.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/checkins", d.checkins.CreateCheckin).Methods("POST")
	protected.HandleFunc("/checkins", d.checkins.ListCheckins).Methods("GET")
	// must be registered before the {date} routes
	protected.HandleFunc("/checkins/calendar", d.checkins.GetCalendar).Methods("GET")
	protected.HandleFunc("/checkins/"+datePattern, d.checkins.GetCheckin).Methods("GET")
	protected.HandleFunc("/checkins/"+datePattern, d.checkins.DeleteCheckin).Methods("DELETE")

	wellnessRoutes := protected.PathPrefix("/wellness").Subrouter()
	wellnessRoutes.HandleFunc("/score", d.wellness.GetScore).Methods("GET")
	wellnessRoutes.HandleFunc("/score", d.wellness.ScoreInput).Methods("POST")
	wellnessRoutes.HandleFunc("/resilience", d.wellness.GetResilience).Methods("GET")
	wellnessRoutes.HandleFunc("/streak", d.wellness.GetStreak).Methods("GET")
	wellnessRoutes.HandleFunc("/insights", d.wellness.GetInsights).Methods("GET")
	wellnessRoutes.HandleFunc("/achievements", d.wellness.GetAchievements).Methods("GET")
	wellnessRoutes.HandleFunc("/summary", d.wellness.GetSummary).Methods("GET")
	wellnessRoutes.HandleFunc("/stats", d.wellness.GetDaysStats).Methods("GET")

	return r
}
