package adminhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/platform/jobs"
	"avd/internal/transport/http/middleware"
)

type memRuns struct {
	mu   sync.Mutex
	runs []jobs.Run
}

func (m *memRuns) StartRun(_ context.Context, job string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := job + "-run"
	m.runs = append(m.runs, jobs.Run{ID: id, Job: job, Status: "running", StartedAt: time.Now()})
	return id, nil
}

func (m *memRuns) FinishRun(_ context.Context, id, status string, details []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			m.runs[i].Status = status
			m.runs[i].Details = details
		}
	}
	return nil
}

func (m *memRuns) ListRuns(_ context.Context, job string, limit int) ([]jobs.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobs.Run
	for _, r := range m.runs {
		if job == "" || r.Job == job {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

var (
	hr      = auth.UserContext{UserID: "u-hr", Role: auth.RoleHR}
	manager = auth.UserContext{UserID: "u-m", EmployeeID: "e-m", Role: auth.RoleManager}
)

type harness struct {
	runs    *memRuns
	auditor *recordingAuditor
	router  chi.Router
	seen    []time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{runs: &memRuns{}, auditor: &recordingAuditor{}}
	runner := jobs.NewRunner(h.runs, nil, nil)
	scheduler := jobs.NewScheduler(runner, time.UTC, nil)
	require.NoError(t, scheduler.Register("timeclock.discrepancies", "0 2 * * *", func(_ context.Context, at time.Time) (any, error) {
		h.seen = append(h.seen, at)
		return map[string]int{"analyzed": 3}, nil
	}))

	handler := NewHandler(scheduler, runner, h.auditor)
	handler.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	h.router = chi.NewRouter()
	handler.RegisterRoutes(h.router)
	return h
}

func (h *harness) do(user auth.UserContext, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestListJobs(t *testing.T) {
	h := newHarness(t)
	rec := h.do(hr, http.MethodGet, "/admin/jobs")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []jobs.JobInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "timeclock.discrepancies", body.Data[0].Name)
	assert.Equal(t, "0 2 * * *", body.Data[0].Spec)
}

func TestRunJobRequiresPermission(t *testing.T) {
	h := newHarness(t)
	rec := h.do(manager, http.MethodPost, "/admin/jobs/timeclock.discrepancies/run")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, h.seen)
}

func TestRunJobWithDate(t *testing.T) {
	h := newHarness(t)
	rec := h.do(hr, http.MethodPost, "/admin/jobs/timeclock.discrepancies/run?date=2026-03-05")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, h.seen, 1)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), h.seen[0])
	require.Len(t, h.auditor.entries, 1)
	assert.Equal(t, audit.ActionJobRun, h.auditor.entries[0].Action)
	assert.Equal(t, "timeclock.discrepancies", h.auditor.entries[0].EntityID)
	assert.Equal(t, "u-hr", h.auditor.entries[0].ActorID)

	runs := h.do(hr, http.MethodGet, "/admin/jobs/runs?job=timeclock.discrepancies")
	require.Equal(t, http.StatusOK, runs.Code)
	var body struct {
		Data []jobs.Run `json:"data"`
	}
	require.NoError(t, json.NewDecoder(runs.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "completed", body.Data[0].Status)
}

func TestRunJobDefaultsToNow(t *testing.T) {
	h := newHarness(t)
	rec := h.do(hr, http.MethodPost, "/admin/jobs/timeclock.discrepancies/run")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.seen, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), h.seen[0])
}

func TestRunJobRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	rec := h.do(hr, http.MethodPost, "/admin/jobs/timeclock.discrepancies/run?date=10/03/2026")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(hr, http.MethodPost, "/admin/jobs/payroll.close/run")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(hr, http.MethodGet, "/admin/jobs/runs?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, h.seen)
	assert.Empty(t, h.auditor.entries)
}

func TestRunsEmptyHistory(t *testing.T) {
	h := newHarness(t)
	rec := h.do(hr, http.MethodGet, "/admin/jobs/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(mustData(t, rec)))
}

func mustData(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Data
}
