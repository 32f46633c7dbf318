package adminhandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/platform/jobs"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Jobs interface {
	Jobs() []jobs.JobInfo
	RunNow(ctx context.Context, name string, at time.Time) (any, error)
}

type RunHistory interface {
	Runs(ctx context.Context, job string, limit int) ([]jobs.Run, error)
}

type Handler struct {
	Jobs    Jobs
	History RunHistory
	Audit   shared.Auditor
	now     func() time.Time
}

func NewHandler(scheduler Jobs, history RunHistory, auditor shared.Auditor) *Handler {
	return &Handler{Jobs: scheduler, History: history, Audit: auditor, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun))
		r.Get("/", h.handleList)
		r.Get("/runs", h.handleRuns)
		r.Post("/{name}/run", h.handleRun)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Jobs.Jobs(), shared.RequestID(r))
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			v := shared.NewValidator()
			v.Add("limit", "must be an integer")
			v.Reject(w, shared.RequestID(r))
			return
		}
		limit = parsed
	}
	runs, err := h.History.Runs(r.Context(), r.URL.Query().Get("job"), limit)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, shared.RequestID(r))
}

// handleRun triggers a registered job as of ?date=, defaulting to now.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	at := h.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		v := shared.NewValidator()
		parsed, _ := v.Date("date", raw)
		if v.Reject(w, shared.RequestID(r)) {
			return
		}
		at = parsed
	}
	result, err := h.Jobs.RunNow(r.Context(), name, at)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionJobRun,
		EntityType: "job",
		EntityID:   name,
		After:      map[string]any{"at": at.Format(time.RFC3339), "result": result},
	})
	api.Success(w, map[string]any{"job": name, "at": at, "result": result}, shared.RequestID(r))
}
