package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"resonanceAPI/handlers"
	"resonanceAPI/internal/cache"
	"resonanceAPI/internal/config"
	"resonanceAPI/internal/database"
	"resonanceAPI/internal/logger"
	"resonanceAPI/internal/metrics"
	"resonanceAPI/internal/wellness"
	"resonanceAPI/middleware"
	"resonanceAPI/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	base, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer base.Sync()
	log := logger.NewZapLogger(base.Sugar())

	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		log.Info("running database migrations")
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("database migrations completed successfully")
		return nil
	case "serve":
		return serve(cfg, base, log)
	default:
		return fmt.Errorf("unknown command %q (want serve or migrate)", cmd)
	}
}

func serve(cfg *config.Config, base *zap.Logger, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Info("Clerk initialized successfully")

	if cfg.ClerkWebhookSecret == "" {
		if cfg.IsProduction() {
			return errors.New("CLERK_WEBHOOK_SECRET must be set in production")
		}
		log.Warn("CLERK_WEBHOOK_SECRET not set, skipping webhook signature verification")
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbPool, err := database.NewPool(initCtx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing database connection pool...")
		dbPool.Close()
	}()
	log.Info("Successfully connected to database")

	snapshotCache, err := newCache(initCtx, ctx, cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics(reg)
	collector := metrics.NewCollector(reg)

	scorer := wellness.NewScorer(base.Named("scorer"))
	userService := services.NewUserService(dbPool, log)
	checkinService := services.NewCheckinService(dbPool, log)
	wellnessService := services.NewWellnessService(checkinService, snapshotCache, scorer, collector, log,
		services.WellnessServiceConfig{
			SnapshotTTL: cfg.SnapshotTTL,
			DefaultMode: cfg.DefaultScoreMode,
		})
	checkinService.Subscribe(wellnessService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(ctx)

	r := newRouter(routerDeps{
		users:       handlers.NewUserHandler(userService, log),
		checkins:    handlers.NewCheckinHandler(userService, checkinService, wellnessService, log),
		wellness:    handlers.NewWellnessHandler(userService, wellnessService, log),
		webhooks:    handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret, log),
		auth:        middleware.NewClerkAuth(middleware.ClerkVerifier, log),
		limiter:     limiter,
		httpMetrics: httpMetrics,
		requestLog:  middleware.RequestLogger(base.Named("http")),
		gatherer:    reg,
		metricsUser: cfg.MetricsUser,
		metricsPass: cfg.MetricsPass,
		ping:        dbPool.Ping,
	})

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Got shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

// newCache uses Redis when REDIS_URL is set so snapshots are shared across
// instances, and a swept in-memory cache otherwise.
func newCache(initCtx, runCtx context.Context, cfg *config.Config, log logger.Logger) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(initCtx, cfg.RedisURL, "resonance:")
		if err != nil {
			return nil, err
		}
		go func() {
			<-runCtx.Done()
			rc.Close()
		}()
		log.Info("Snapshot cache: redis")
		return rc, nil
	}

	mc := cache.NewMemoryCache()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if n := mc.Sweep(); n > 0 {
					log.Debugf("swept %d expired snapshots", n)
				}
			}
		}
	}()
	log.Info("Snapshot cache: in-memory")
	return mc, nil
}
