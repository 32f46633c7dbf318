package goalshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/goal"
	"avd/internal/transport/http/middleware"
)

const (
	cycleID    = "0d6f4f0a-2b43-4d7e-8d57-6a1a2c3b4d01"
	managerID  = "6f1c1c52-7d4b-4f2e-9f55-3f0c8a9d1a01"
	employeeID = "6f1c1c52-7d4b-4f2e-9f55-3f0c8a9d1a02"
	outsiderID = "6f1c1c52-7d4b-4f2e-9f55-3f0c8a9d1a03"
)

type fakeService struct {
	goals      map[string]goal.Goal
	created    []goal.CreateInput
	lastFilter goal.Filter
	lastRule   string
}

func newFake() *fakeService {
	target := 100.0
	return &fakeService{goals: map[string]goal.Goal{
		"g-own":    {ID: "g-own", EmployeeID: employeeID, TargetValue: &target, Status: goal.StatusDraft},
		"g-org":    {ID: "g-org", Type: goal.TypeOrganizational, TargetValue: &target, Status: goal.StatusDraft},
		"g-outsid": {ID: "g-outsid", EmployeeID: outsiderID, TargetValue: &target, Status: goal.StatusDraft},
	}}
}

func (f *fakeService) CreateSMART(_ context.Context, in goal.CreateInput) (goal.Goal, error) {
	f.created = append(f.created, in)
	return goal.Goal{ID: "g-new", EmployeeID: in.EmployeeID, Title: in.Title, Smart: goal.SmartResult{Score: 100}}, nil
}

func (f *fakeService) UpdateProgress(_ context.Context, in goal.ProgressInput) (goal.Goal, error) {
	g := f.goals[in.GoalID]
	if g.Status == goal.StatusCompleted {
		return goal.Goal{}, goal.ErrGoalCompleted
	}
	g.CurrentValue = in.CurrentValue
	g.Progress = goal.Progress(in.CurrentValue, *g.TargetValue)
	if g.Progress >= 100 {
		g.Status = goal.StatusCompleted
	} else {
		g.Status = goal.StatusInProgress
	}
	f.goals[in.GoalID] = g
	return g, nil
}

func (f *fakeService) Get(_ context.Context, id string) (goal.Goal, error) {
	g, ok := f.goals[id]
	if !ok {
		return goal.Goal{}, goal.ErrNotFound
	}
	return g, nil
}

func (f *fakeService) History(_ context.Context, id string) ([]goal.ProgressUpdate, error) {
	return []goal.ProgressUpdate{{GoalID: id, NewValue: 10}}, nil
}

func (f *fakeService) List(_ context.Context, filter goal.Filter, _, _ int) ([]goal.Goal, error) {
	f.lastFilter = filter
	return []goal.Goal{}, nil
}

func (f *fakeService) BonusEligibility(_ context.Context, _, _, rule string) (goal.Eligibility, error) {
	f.lastRule = rule
	return goal.Eligibility{Rule: rule, Total: 2, Completed: 2, Eligible: true}, nil
}

type fakeHierarchy map[string]string

func (h fakeHierarchy) IsManagerOf(_ context.Context, managerID, employeeID string) (bool, error) {
	return h[employeeID] == managerID, nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

var (
	self    = auth.UserContext{UserID: "u-e", EmployeeID: employeeID, Role: auth.RoleEmployee}
	manager = auth.UserContext{UserID: "u-m", EmployeeID: managerID, Role: auth.RoleManager}
	hr      = auth.UserContext{UserID: "u-hr", Role: auth.RoleHR}
)

type harness struct {
	svc     *fakeService
	auditor *recordingAuditor
	router  chi.Router
}

func newHarness() *harness {
	h := &harness{svc: newFake(), auditor: &recordingAuditor{}}
	h.router = chi.NewRouter()
	NewHandler(h.svc, fakeHierarchy{employeeID: managerID}, h.auditor, goal.RuleAny).RegisterRoutes(h.router)
	return h
}

func (h *harness) do(user auth.UserContext, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func goalBody(typ, employee string) string {
	emp := ""
	if employee != "" {
		emp = `"employeeId":"` + employee + `",`
	}
	return `{` + emp + `"cycleId":"` + cycleID + `","title":"Reduzir custo logístico","description":"Reduzir o custo de frete por tonelada em 10% até o fim da safra","type":"` + typ + `","category":"financial","measurementUnit":"%","targetValue":10,"weight":30,"startDate":"2026-01-01","endDate":"2026-06-30","bonusEligible":true}`
}

func TestCreateRequiresEmployeeForIndividualGoals(t *testing.T) {
	h := newHarness()

	rec := h.do(hr, http.MethodPost, "/goals", goalBody(goal.TypeIndividual, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"employeeId"`)

	rec = h.do(hr, http.MethodPost, "/goals", goalBody(goal.TypeOrganizational, ""))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, h.svc.created, 1)
	assert.Equal(t, "u-hr", h.svc.created[0].CreatedBy)
	assert.Equal(t, 6, int(h.svc.created[0].EndDate.Month()))
	assert.Len(t, h.auditor.entries, 1)
}

func TestCreateChecksOwnership(t *testing.T) {
	h := newHarness()

	assert.Equal(t, http.StatusCreated, h.do(self, http.MethodPost, "/goals", goalBody(goal.TypeIndividual, employeeID)).Code)
	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodPost, "/goals", goalBody(goal.TypeIndividual, outsiderID)).Code)
	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodPost, "/goals", goalBody(goal.TypeTeam, "")).Code)
	assert.Equal(t, http.StatusCreated, h.do(manager, http.MethodPost, "/goals", goalBody(goal.TypeIndividual, employeeID)).Code)
	assert.Equal(t, http.StatusForbidden, h.do(manager, http.MethodPost, "/goals", goalBody(goal.TypeIndividual, outsiderID)).Code)
	assert.Len(t, h.svc.created, 2)
}

func TestProgressUpdates(t *testing.T) {
	h := newHarness()

	rec := h.do(self, http.MethodPost, "/goals/g-own/progress", `{"currentValue":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), goal.StatusInProgress)

	rec = h.do(self, http.MethodPost, "/goals/g-own/progress", `{"currentValue":150}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"progress":100`)

	rec = h.do(self, http.MethodPost, "/goals/g-own/progress", `{"currentValue":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(self, http.MethodPost, "/goals/g-own/progress", `{"currentValue":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(self, http.MethodPost, "/goals/g-own/progress", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodPost, "/goals/g-outsid/progress", `{"currentValue":1}`).Code)
	assert.Equal(t, http.StatusForbidden, h.do(self, http.MethodPost, "/goals/g-org/progress", `{"currentValue":1}`).Code)
	assert.Equal(t, http.StatusOK, h.do(manager, http.MethodPost, "/goals/g-org/progress", `{"currentValue":1}`).Code)
	assert.Len(t, h.auditor.entries, 3)
}

func TestListAndEligibility(t *testing.T) {
	h := newHarness()

	rec := h.do(self, http.MethodGet, "/goals?employeeId="+outsiderID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, employeeID, h.svc.lastFilter.EmployeeID)

	rec = h.do(manager, http.MethodGet, "/goals?employeeId="+outsiderID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(hr, http.MethodGet, "/goals?status=feito", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(self, http.MethodGet, "/goals/eligibility?cycleId="+cycleID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goal.RuleAny, h.svc.lastRule)
	assert.Contains(t, rec.Body.String(), `"eligible":true`)

	rec = h.do(hr, http.MethodGet, "/goals/eligibility?cycleId="+cycleID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(self, http.MethodGet, "/goals/g-own/progress", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(self, http.MethodGet, "/goals/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
