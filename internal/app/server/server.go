package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/bonus"
	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/evaluation"
	"avd/internal/domain/goal"
	"avd/internal/domain/notifications"
	"avd/internal/domain/timeclock"
	"avd/internal/platform/cache"
	"avd/internal/platform/config"
	"avd/internal/platform/crypto"
	"avd/internal/platform/db"
	"avd/internal/platform/email"
	"avd/internal/platform/jobs"
	"avd/internal/platform/logger"
	"avd/internal/platform/metrics"
)

const shutdownTimeout = 15 * time.Second

// App is the fully wired process. cmd/server serves it over HTTP and
// cmd/avdctl reuses it to trigger jobs by hand.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	DB        *pgxpool.Pool
	Cache     cache.Cacher
	Metrics   *metrics.Collector
	Runner    *jobs.Runner
	Scheduler *jobs.Scheduler

	Employees     *employee.Service
	Cycles        *cycle.Service
	Evaluations   *evaluation.Service
	Goals         *goal.Service
	Bonus         *bonus.Service
	Timeclock     *timeclock.Service
	Auth          *auth.Service
	Audit         *audit.Service
	Notifications *notifications.Service
}

// New connects to Postgres, applies migrations and seed data when enabled,
// and builds every service. Close releases what New opened.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, Log: log, DB: pool}
	if err := app.build(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, log, pool := a.Config, a.Log, a.DB

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg, auth.HashPassword); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	cacher, err := newCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.Cache = cacher
	loader := cache.NewLoader(cacher, cfg.CacheTTL, log.Named("cache"))

	cipher, err := crypto.NewCipher(cfg.DataEncryptionKey)
	if err != nil {
		return fmt.Errorf("data encryption key: %w", err)
	}
	if !cipher.Configured() {
		log.Warn("DATA_ENCRYPTION_KEY not set; employee salaries are stored unencrypted")
	}

	a.Metrics = metrics.New()
	mailer := email.New(cfg, a.Metrics)
	a.Notifications = notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom, log.Named("notifications"))
	a.Audit = audit.New(pool)
	a.Auth = auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL, log.Named("auth"))

	a.Employees = employee.NewService(employee.NewStore(pool, cipher))
	a.Cycles = cycle.NewService(cycle.NewStore(pool), loader)

	bands, err := bonus.ParseBands(cfg.PerformanceBands)
	if err != nil {
		return fmt.Errorf("PERFORMANCE_BANDS: %w", err)
	}
	classifier, err := bonus.NewClassifier(bands)
	if err != nil {
		return fmt.Errorf("PERFORMANCE_BANDS: %w", err)
	}
	multipliers, err := bonus.ParseMultipliers(cfg.BonusMultipliers)
	if err != nil {
		return fmt.Errorf("BONUS_MULTIPLIERS: %w", err)
	}

	a.Evaluations = evaluation.NewService(evaluation.Deps{
		Store:      evaluation.NewStore(pool),
		Cycles:     a.Cycles,
		Directory:  a.Employees,
		Classifier: classifier,
		Notifier:   a.Notifications,
		Cache:      loader,
		Log:        log.Named("evaluation"),
	}, evaluation.Options{
		Scale:               evaluation.Scale{Min: cfg.RatingScaleMin, Max: cfg.RatingScaleMax},
		DivergenceThreshold: cfg.DivergenceThreshold,
		ReminderDays:        cfg.ConsensusReminderDays,
		EmailDelay:          cfg.EmailSendDelay,
		BaseURL:             cfg.BaseURL,
	})

	a.Goals = goal.NewService(goal.NewStore(pool), a.Cycles, a.Employees, a.Notifications, goal.Options{
		ReminderWindowDays: cfg.GoalReminderWindow,
		EmailDelay:         cfg.EmailSendDelay,
		BaseURL:            cfg.BaseURL,
	}, log.Named("goal"))

	a.Bonus, err = bonus.NewService(bonus.Deps{
		Store:       bonus.NewStore(pool),
		Evaluations: a.Evaluations,
		Goals:       a.Goals,
		Directory:   a.Employees,
		Cycles:      a.Cycles,
		Notifier:    a.Notifications,
		Log:         log.Named("bonus"),
	}, classifier, bonus.Policy{Multipliers: multipliers, EligibilityRule: cfg.BonusEligibilityRule}, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("bonus policy: %w", err)
	}

	a.Timeclock, err = timeclock.NewService(timeclock.NewStore(pool), a.Notifications, timeclock.Options{
		Thresholds: timeclock.Thresholds{Acceptable: cfg.DiscrepancyAcceptablePct, Alert: cfg.DiscrepancyAlertPct},
		BaseURL:    cfg.BaseURL,
	}, log.Named("timeclock"))
	if err != nil {
		return fmt.Errorf("timeclock: %w", err)
	}

	a.Runner = jobs.NewRunner(jobs.NewStore(pool), a.Metrics, log.Named("jobs"))
	a.Scheduler = jobs.NewScheduler(a.Runner, time.Local, log.Named("scheduler"))
	return registerJobs(a.Scheduler, cfg, jobTargets{
		Timeclock:   a.Timeclock,
		Evaluations: a.Evaluations,
		Goals:       a.Goals,
	})
}

func newCache(ctx context.Context, cfg config.Config, log *zap.Logger) (cache.Cacher, error) {
	if cfg.RedisAddr != "" {
		redis, err := cache.NewRedis(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err == nil {
			log.Info("cache: redis", zap.String("addr", cfg.RedisAddr))
			return redis, nil
		}
		log.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
	}
	return cache.NewLRU(cfg.CacheSize, cfg.CacheTTL)
}

func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("cache close failed", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves the API until SIGINT or SIGTERM, then drains in-flight
// requests and running jobs.
func Run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.SchedulerEnabled {
		app.Scheduler.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("AVD server listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}
	if cfg.SchedulerEnabled {
		app.Scheduler.Stop(shutdownCtx)
	}
	return nil
}
