package goal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/notifications"
)

type memStore struct {
	goals   map[string]Goal
	history []ProgressUpdate
	seq     int
}

func newMemStore() *memStore {
	return &memStore{goals: map[string]Goal{}}
}

func (m *memStore) Create(_ context.Context, g Goal) (string, error) {
	m.seq++
	g.ID = fmt.Sprintf("goal-%d", m.seq)
	g.Smart.Feedback = nil
	m.goals[g.ID] = g
	return g.ID, nil
}

func (m *memStore) Get(_ context.Context, id string) (Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return Goal{}, ErrNotFound
	}
	return g, nil
}

func (m *memStore) List(_ context.Context, f Filter, _, _ int) ([]Goal, error) {
	var out []Goal
	for _, g := range m.goals {
		if f.EmployeeID != "" && g.EmployeeID != f.EmployeeID && g.Type != TypeOrganizational {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *memStore) RecordProgress(_ context.Context, g Goal, upd ProgressUpdate) (Goal, error) {
	if m.goals[g.ID].Status == StatusCompleted {
		return Goal{}, ErrGoalCompleted
	}
	m.goals[g.ID] = g
	m.history = append(m.history, upd)
	return g, nil
}

func (m *memStore) ListProgress(_ context.Context, goalID string) ([]ProgressUpdate, error) {
	var out []ProgressUpdate
	for _, u := range m.history {
		if u.GoalID == goalID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) BonusGoals(_ context.Context, employeeID, cycleID string) ([]Goal, error) {
	var out []Goal
	for _, g := range m.goals {
		if g.CycleID == cycleID && g.BonusEligible && (g.EmployeeID == employeeID || g.Type == TypeOrganizational) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) DueBetween(_ context.Context, from, to time.Time) ([]Goal, error) {
	var out []Goal
	for _, g := range m.goals {
		if g.Status != StatusCompleted && g.EmployeeID != "" && !g.EndDate.Before(from) && !g.EndDate.After(to) {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeCycles map[string]cycle.Cycle

func (f fakeCycles) Get(_ context.Context, id string) (cycle.Cycle, error) {
	c, ok := f[id]
	if !ok {
		return cycle.Cycle{}, cycle.ErrNotFound
	}
	return c, nil
}

type fakeDirectory map[string]employee.Employee

func (f fakeDirectory) Get(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}

type fakeNotifier struct {
	sent []notifications.Intent
	fail bool
}

func (n *fakeNotifier) NotifyEmail(_ context.Context, intent notifications.Intent) error {
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, intent)
	return nil
}

func newTestService() (*Service, *memStore, *fakeNotifier) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	svc := NewService(store,
		fakeCycles{"cy-1": {ID: "cy-1", Status: cycle.StatusActive}, "cy-old": {ID: "cy-old", Status: cycle.StatusClosed}},
		fakeDirectory{"emp-1": {ID: "emp-1", Name: "Ana"}},
		notifier, Options{BaseURL: "https://avd.test"}, nil)
	return svc, store, notifier
}

func ptr(v float64) *float64 { return &v }

func validInput() CreateInput {
	return CreateInput{
		CycleID:     "cy-1",
		EmployeeID:  "emp-1",
		Title:       "Aumentar vendas regionais",
		Description: "Aumentar as vendas da regional sul em 15% com impacto direto no resultado da unidade.",
		Type:        TypeIndividual,
		Category:    CategoryFinancial,
		Unit:        "percentage",
		TargetValue: ptr(15),
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateSMARTIndividualRequiresEmployee(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.EmployeeID = ""

	_, err := svc.CreateSMART(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmployeeRequired)
}

func TestCreateSMARTOrganizationalWithoutEmployee(t *testing.T) {
	svc, _, _ := newTestService()
	in := validInput()
	in.EmployeeID = ""
	in.Type = TypeOrganizational

	g, err := svc.CreateSMART(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, g.EmployeeID)
	assert.Equal(t, StatusDraft, g.Status)
	assert.Equal(t, DefaultWeight, g.Weight)
	assert.Equal(t, 100, g.Smart.Score)
	assert.Empty(t, g.Smart.Feedback)
}

func TestCreateSMARTValidation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []struct {
		name   string
		mutate func(*CreateInput)
		want   error
	}{
		{"bad type", func(in *CreateInput) { in.Type = "squad" }, ErrInvalidType},
		{"bad category", func(in *CreateInput) { in.Category = "misc" }, ErrInvalidCategory},
		{"short title", func(in *CreateInput) { in.Title = "Vendas" }, ErrTitleTooShort},
		{"short description", func(in *CreateInput) { in.Description = "Aumentar vendas" }, ErrDescTooShort},
		{"weight too high", func(in *CreateInput) { in.Weight = 101 }, ErrInvalidWeight},
		{"end before start", func(in *CreateInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) }, ErrInvalidDates},
		{"closed cycle", func(in *CreateInput) { in.CycleID = "cy-old" }, ErrCycleClosed},
		{"unknown cycle", func(in *CreateInput) { in.CycleID = "cy-x" }, cycle.ErrNotFound},
		{"unknown employee", func(in *CreateInput) { in.EmployeeID = "emp-x" }, employee.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.CreateSMART(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCheckSMARTCriteria(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "Implementar rotina de feedback semanal com a equipe para gerar melhoria de clima."

	full := CheckSMART("Rotina de feedback", desc, "reuniões", ptr(40), start, start.AddDate(0, 3, 0))
	assert.Equal(t, 100, full.Score)

	noVerb := CheckSMART("Rotina de feedback", strings.Replace(desc, "Implementar", "Ter", 1), "reuniões", ptr(40), start, start.AddDate(0, 3, 0))
	assert.False(t, noVerb.Specific)
	assert.Equal(t, 80, noVerb.Score)

	noTarget := CheckSMART("Rotina de feedback", desc, "reuniões", nil, start, start.AddDate(0, 3, 0))
	assert.False(t, noTarget.Measurable)
	assert.False(t, noTarget.Achievable)
	assert.Equal(t, 60, noTarget.Score)

	huge := CheckSMART("Rotina de feedback", desc, "reais", ptr(1000000), start, start.AddDate(0, 3, 0))
	assert.True(t, huge.Measurable)
	assert.False(t, huge.Achievable)

	tooShort := CheckSMART("Rotina de feedback", desc, "reuniões", ptr(40), start, start.AddDate(0, 0, 20))
	assert.False(t, tooShort.TimeBound)
	tooLong := CheckSMART("Rotina de feedback", desc, "reuniões", ptr(40), start, start.AddDate(3, 0, 0))
	assert.False(t, tooLong.TimeBound)
	assert.Len(t, tooLong.Feedback, 1)

	for _, r := range []SmartResult{full, noVerb, noTarget, huge, tooShort} {
		assert.Zero(t, r.Score%20)
		assert.GreaterOrEqual(t, r.Score, 0)
		assert.LessOrEqual(t, r.Score, 100)
	}
}

func TestUpdateProgressLifecycle(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	g, err := svc.CreateSMART(ctx, validInput())
	require.NoError(t, err)

	g, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: g.ID, CurrentValue: 6})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, g.Status)
	assert.InDelta(t, 40, g.Progress, 1e-9)

	g, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: g.ID, CurrentValue: 20})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, g.Status)
	assert.InDelta(t, 100, g.Progress, 1e-9)
	assert.NotNil(t, g.CompletedAt)

	_, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: g.ID, CurrentValue: 1})
	assert.ErrorIs(t, err, ErrGoalCompleted)

	history, err := svc.History(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.InDelta(t, 6, history[1].PreviousValue, 1e-9)
	assert.Len(t, store.history, 2)
}

func TestUpdateProgressValidation(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	in := validInput()
	in.TargetValue = nil
	g, err := svc.CreateSMART(ctx, in)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: g.ID, CurrentValue: 3})
	assert.ErrorIs(t, err, ErrNoTarget)
	_, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: g.ID, CurrentValue: -1})
	assert.ErrorIs(t, err, ErrNegativeProgress)
	_, err = svc.UpdateProgress(ctx, ProgressInput{GoalID: "nope", CurrentValue: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.history)
}

func TestProgressCapsAtHundred(t *testing.T) {
	assert.Equal(t, 100.0, Progress(300, 100))
	assert.Equal(t, 50.0, Progress(50, 100))
	assert.Equal(t, 0.0, Progress(10, 0))
}

func TestEvaluateEligibility(t *testing.T) {
	done := Goal{BonusEligible: true, Status: StatusCompleted}
	open := Goal{BonusEligible: true, Status: StatusInProgress}
	ignored := Goal{BonusEligible: false, Status: StatusInProgress}

	all, err := EvaluateEligibility([]Goal{done, open, ignored}, RuleAll)
	require.NoError(t, err)
	assert.False(t, all.Eligible)
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, 1, all.Completed)

	anyRule, err := EvaluateEligibility([]Goal{done, open}, RuleAny)
	require.NoError(t, err)
	assert.True(t, anyRule.Eligible)

	allDone, err := EvaluateEligibility([]Goal{done, ignored}, RuleAll)
	require.NoError(t, err)
	assert.True(t, allDone.Eligible)

	none, err := EvaluateEligibility([]Goal{ignored}, RuleAny)
	require.NoError(t, err)
	assert.False(t, none.Eligible)

	_, err = EvaluateEligibility(nil, "most")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestBonusEligibilityIncludesOrganizationalGoals(t *testing.T) {
	svc, store, _ := newTestService()
	store.goals["org"] = Goal{ID: "org", CycleID: "cy-1", Type: TypeOrganizational, BonusEligible: true, Status: StatusCompleted}
	store.goals["other"] = Goal{ID: "other", CycleID: "cy-1", EmployeeID: "emp-2", Type: TypeIndividual, BonusEligible: true}

	e, err := svc.BonusEligibility(context.Background(), "emp-1", "cy-1", RuleAll)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Total)
	assert.True(t, e.Eligible)
}

func TestRemindDeadlines(t *testing.T) {
	svc, store, notifier := newTestService()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	store.goals["soon"] = Goal{ID: "soon", EmployeeID: "emp-1", Title: "Meta A", Status: StatusInProgress, EndDate: now.AddDate(0, 0, 3)}
	store.goals["later"] = Goal{ID: "later", EmployeeID: "emp-1", Title: "Meta B", Status: StatusInProgress, EndDate: now.AddDate(0, 1, 0)}
	store.goals["done"] = Goal{ID: "done", EmployeeID: "emp-1", Title: "Meta C", Status: StatusCompleted, EndDate: now.AddDate(0, 0, 2)}

	summary, err := svc.RemindDeadlines(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Processed: 1, Succeeded: 1}, summary)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notifications.TypeGoalDeadline, notifier.sent[0].Type)

	notifier.fail = true
	summary, err = svc.RemindDeadlines(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
}
