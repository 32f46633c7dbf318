package bonushandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/bonus"
	"avd/internal/domain/cycle"
	"avd/internal/transport/http/middleware"
)

const (
	cycleID    = "0d6f4f0a-2b43-4d7e-8d57-6a1a2c3b4d01"
	employeeID = "6f1c1c52-7d4b-4f2e-9f55-3f0c8a9d1a02"
	otherID    = "6f1c1c52-7d4b-4f2e-9f55-3f0c8a9d1a03"
)

type fakeService struct {
	classifier *bonus.Classifier
	calcs      map[string]bonus.Calculation
	policy     *bonus.Policy
}

func newFake(t *testing.T) *fakeService {
	t.Helper()
	bands, err := bonus.ParseBands("insatisfatorio:0,abaixo_expectativas:40,atende_expectativas:60,supera_expectativas:75,excepcional:90")
	require.NoError(t, err)
	c, err := bonus.NewClassifier(bands)
	require.NoError(t, err)
	return &fakeService{classifier: c, calcs: map[string]bonus.Calculation{
		"b-own":   {ID: "b-own", CycleID: cycleID, EmployeeID: employeeID, EmployeeName: "João Silva", FinalScore: 82.22, PerformanceBand: "supera_expectativas", AppliedMultiplier: 1.5, BaseSalary: 10000, Eligible: true, Amount: 15000, Status: bonus.StatusCalculated},
		"b-other": {ID: "b-other", CycleID: cycleID, EmployeeID: otherID, Status: bonus.StatusCalculated},
	}}
}

func (f *fakeService) Classifier() *bonus.Classifier { return f.classifier }

func (f *fakeService) Policy(_ context.Context, id string) (bonus.Policy, error) {
	if id != cycleID {
		return bonus.Policy{}, cycle.ErrNotFound
	}
	if f.policy != nil {
		return *f.policy, nil
	}
	return bonus.Policy{CycleID: id, EligibilityRule: bonus.RuleAll, Default: true}, nil
}

func (f *fakeService) SetPolicy(_ context.Context, p bonus.Policy) (bonus.Policy, error) {
	if err := bonus.ValidatePolicy(p, f.classifier); err != nil {
		return bonus.Policy{}, err
	}
	f.policy = &p
	return p, nil
}

func (f *fakeService) Calculate(_ context.Context, cycleID, employeeID string) (bonus.Calculation, error) {
	for _, c := range f.calcs {
		if c.CycleID == cycleID && c.EmployeeID == employeeID {
			return c, nil
		}
	}
	return bonus.Calculation{}, bonus.ErrNoEvaluation
}

func (f *fakeService) CalculateCycle(_ context.Context, _ string) (bonus.BatchResult, error) {
	return bonus.BatchResult{Processed: 3, Succeeded: 2, Failed: 1, Errors: []bonus.ItemError{{EmployeeID: "ghost", Error: "sem avaliação"}}}, nil
}

func (f *fakeService) MarkPaid(_ context.Context, id string) (bonus.Calculation, error) {
	c, ok := f.calcs[id]
	if !ok {
		return bonus.Calculation{}, bonus.ErrNotFound
	}
	if c.Status == bonus.StatusPaid {
		return bonus.Calculation{}, bonus.ErrAlreadyPaid
	}
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	c.Status, c.PaidAt = bonus.StatusPaid, &now
	f.calcs[id] = c
	return c, nil
}

func (f *fakeService) Get(_ context.Context, id string) (bonus.Calculation, error) {
	c, ok := f.calcs[id]
	if !ok {
		return bonus.Calculation{}, bonus.ErrNotFound
	}
	return c, nil
}

func (f *fakeService) List(_ context.Context, _, _ string) ([]bonus.Calculation, error) {
	return []bonus.Calculation{f.calcs["b-own"], f.calcs["b-other"]}, nil
}

func (f *fakeService) Statement(_ context.Context, id string) ([]byte, error) {
	return bonus.RenderStatement(f.calcs[id], "Ciclo 2026")
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

var (
	self = auth.UserContext{UserID: "u-e", EmployeeID: employeeID, Role: auth.RoleEmployee}
	hr   = auth.UserContext{UserID: "u-hr", Role: auth.RoleHR}
)

type harness struct {
	svc     *fakeService
	auditor *recordingAuditor
	router  chi.Router
}

func newHarness(t *testing.T) *harness {
	h := &harness{svc: newFake(t), auditor: &recordingAuditor{}}
	h.router = chi.NewRouter()
	NewHandler(h.svc, h.auditor, nil).RegisterRoutes(h.router)
	return h
}

func (h *harness) do(user auth.UserContext, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestCollaboratorSeesOnlyOwnCalculations(t *testing.T) {
	h := newHarness(t)

	rec := h.do(self, http.MethodGet, "/bonus/calculations?cycleId="+cycleID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "b-own")
	assert.NotContains(t, rec.Body.String(), "b-other")
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodGet, "/bonus/calculations/b-other", "").Code)
	assert.Equal(t, http.StatusOK, h.do(self, http.MethodGet, "/bonus/calculations/b-own", "").Code)

	rec = h.do(hr, http.MethodGet, "/bonus/calculations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
}

func TestStatementIsPDF(t *testing.T) {
	h := newHarness(t)
	rec := h.do(self, http.MethodGet, "/bonus/calculations/b-own/statement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	assert.Equal(t, http.StatusNotFound, h.do(hr, http.MethodGet, "/bonus/calculations/nope/statement", "").Code)
}

func TestPayTwiceConflicts(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodPost, "/bonus/calculations/b-own/pay", "").Code)

	rec := h.do(hr, http.MethodPost, "/bonus/calculations/b-own/pay", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), bonus.StatusPaid)

	rec = h.do(hr, http.MethodPost, "/bonus/calculations/b-own/pay", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "bonus_already_paid")
	assert.Len(t, h.auditor.entries, 1)
}

func TestCalculateEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(hr, http.MethodPost, "/bonus/cycles/"+cycleID+"/employees/"+employeeID+"/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bonusAmount":15000`)

	rec = h.do(hr, http.MethodPost, "/bonus/cycles/"+cycleID+"/employees/ghost/calculate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(hr, http.MethodPost, "/bonus/cycles/"+cycleID+"/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed":1`)
	assert.Len(t, h.auditor.entries, 2)
}

func TestPolicy(t *testing.T) {
	h := newHarness(t)

	rec := h.do(self, http.MethodGet, "/bonus/cycles/"+cycleID+"/policy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"default":true`)

	rec = h.do(hr, http.MethodPut, "/bonus/cycles/"+cycleID+"/policy", `{"multipliers":{"excepcional":11},"eligibilityRule":"all"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(hr, http.MethodPut, "/bonus/cycles/"+cycleID+"/policy", `{"multipliers":{"excepcional":2},"eligibilityRule":"any"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_multipliers")

	body := `{"multipliers":{"insatisfatorio":0,"abaixo_expectativas":0,"atende_expectativas":1,"supera_expectativas":1,"excepcional":1.5},"eligibilityRule":"any"}`
	rec = h.do(hr, http.MethodPut, "/bonus/cycles/"+cycleID+"/policy", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.auditor.entries, 1)
	assert.Equal(t, audit.ActionBonusPolicy, h.auditor.entries[0].Action)

	rec = h.do(hr, http.MethodGet, "/bonus/bands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "excepcional")
}
