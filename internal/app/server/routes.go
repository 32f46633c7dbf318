package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	adminhandler "avd/internal/transport/http/handlers/admin"
	audithandler "avd/internal/transport/http/handlers/audit"
	authhandler "avd/internal/transport/http/handlers/auth"
	bonushandler "avd/internal/transport/http/handlers/bonus"
	cycleshandler "avd/internal/transport/http/handlers/cycles"
	employeeshandler "avd/internal/transport/http/handlers/employees"
	evaluationshandler "avd/internal/transport/http/handlers/evaluations"
	goalshandler "avd/internal/transport/http/handlers/goals"
	notificationshandler "avd/internal/transport/http/handlers/notifications"
	timeclockhandler "avd/internal/transport/http/handlers/timeclock"
	"avd/internal/transport/http/middleware"
)

// Router builds the HTTP surface: health checks and metrics at the root, the API
// under /api/v1.
func (a *App) Router() http.Handler {
	cfg, log := a.Config, a.Log

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Logger(log, a.Metrics))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		limitOpts := middleware.WithLogger(log.Named("ratelimit"))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts))

		authhandler.NewHandler(a.Auth, a.Audit).RegisterRoutes(r)
		employeeshandler.NewHandler(a.Employees, a.Audit).RegisterRoutes(r)
		cycleshandler.NewHandler(a.Cycles, a.Evaluations, a.Audit).RegisterRoutes(r)
		evaluationshandler.NewHandler(a.Evaluations, a.Audit).RegisterRoutes(r)
		goalshandler.NewHandler(a.Goals, a.Employees, a.Audit, cfg.BonusEligibilityRule).RegisterRoutes(r)
		bonushandler.NewHandler(a.Bonus, a.Audit, log.Named("bonus")).RegisterRoutes(r)
		timeclockhandler.NewHandler(a.Timeclock, a.Audit).RegisterRoutes(r)
		notificationshandler.NewHandler(a.Notifications, log.Named("notifications")).RegisterRoutes(r)
		audithandler.NewHandler(a.Audit, log.Named("audit")).RegisterRoutes(r)
		adminhandler.NewHandler(a.Scheduler, a.Runner, a.Audit).RegisterRoutes(r)
	})

	return router
}
