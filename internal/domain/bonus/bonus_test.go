package bonus

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/evaluation"
	"avd/internal/domain/goal"
	"avd/internal/domain/notifications"
	"avd/internal/platform/config"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	bands, err := ParseBands(config.DefaultPerformanceBands)
	require.NoError(t, err)
	c, err := NewClassifier(bands)
	require.NoError(t, err)
	return c
}

func TestClassifyBoundaries(t *testing.T) {
	c := defaultClassifier(t)
	cases := []struct {
		score float64
		want  string
	}{
		{0, "insatisfatorio"},
		{39.99, "insatisfatorio"},
		{40, "abaixo_expectativas"},
		{59.99, "abaixo_expectativas"},
		{60, "atende_expectativas"},
		{75, "supera_expectativas"},
		{89.99, "supera_expectativas"},
		{90, "excepcional"},
		{100, "excepcional"},
	}
	for _, tc := range cases {
		got, err := c.Classify(tc.score)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "score %v", tc.score)
	}
}

func TestClassifyIsTotalOverRange(t *testing.T) {
	c := defaultClassifier(t)
	for score := 0.0; score <= 100; score += 0.25 {
		band, err := c.Classify(score)
		require.NoError(t, err)
		matches := 0
		bands := c.Bands()
		for i, b := range bands {
			upper := 100.0 + 1
			if i+1 < len(bands) {
				upper = bands[i+1].Min
			}
			if score >= b.Min && score < upper {
				matches++
				assert.Equal(t, b.Name, band)
			}
		}
		assert.Equal(t, 1, matches, "score %v", score)
	}
}

func TestClassifyRejectsOutOfRange(t *testing.T) {
	c := defaultClassifier(t)
	for _, score := range []float64{-0.01, 100.01} {
		_, err := c.Classify(score)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	}
}

func TestNewClassifierValidation(t *testing.T) {
	cases := map[string][]Band{
		"empty":          nil,
		"not from zero":  {{Name: "a", Min: 10}, {Name: "b", Min: 50}},
		"duplicate min":  {{Name: "a", Min: 0}, {Name: "b", Min: 50}, {Name: "c", Min: 50}},
		"duplicate name": {{Name: "a", Min: 0}, {Name: "a", Min: 50}},
		"above hundred":  {{Name: "a", Min: 0}, {Name: "b", Min: 120}},
	}
	for name, bands := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewClassifier(bands)
			assert.ErrorIs(t, err, ErrInvalidBands)
		})
	}

	c, err := NewClassifier([]Band{{Name: "alto", Min: 70}, {Name: "baixo", Min: 0}})
	require.NoError(t, err)
	got, err := c.Classify(70)
	require.NoError(t, err)
	assert.Equal(t, "alto", got)
}

func TestParseMultipliers(t *testing.T) {
	m, err := ParseMultipliers(config.DefaultBonusMultipliers)
	require.NoError(t, err)
	assert.Equal(t, 1.5, m["supera_expectativas"])

	_, err = ParseMultipliers("excepcional=2")
	assert.ErrorIs(t, err, ErrInvalidMultipliers)
	_, err = ParseBands("alto:x")
	assert.ErrorIs(t, err, ErrInvalidBands)
}

func TestValidatePolicy(t *testing.T) {
	c := defaultClassifier(t)
	m, err := ParseMultipliers(config.DefaultBonusMultipliers)
	require.NoError(t, err)

	assert.NoError(t, ValidatePolicy(Policy{Multipliers: m, EligibilityRule: RuleAll}, c))
	assert.ErrorIs(t, ValidatePolicy(Policy{Multipliers: m, EligibilityRule: "most"}, c), ErrInvalidRule)

	missing := map[string]float64{"excepcional": 2}
	assert.ErrorIs(t, ValidatePolicy(Policy{Multipliers: missing, EligibilityRule: RuleAny}, c), ErrInvalidMultipliers)

	tooHigh := copyMap(m)
	tooHigh["excepcional"] = 11
	assert.ErrorIs(t, ValidatePolicy(Policy{Multipliers: tooHigh, EligibilityRule: RuleAny}, c), ErrInvalidMultipliers)

	unknown := copyMap(m)
	unknown["lendario"] = 3
	assert.ErrorIs(t, ValidatePolicy(Policy{Multipliers: unknown, EligibilityRule: RuleAny}, c), ErrInvalidMultipliers)
}

func copyMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func TestAmount(t *testing.T) {
	assert.Equal(t, 15000.0, Amount(10000, 1.5, true))
	assert.Equal(t, 0.0, Amount(10000, 1.5, false))
	assert.Equal(t, 0.0, Amount(10000, 0, true))
	assert.Equal(t, 2469.13, Amount(1234.567, 2, true))
}

type memStore struct {
	policies map[string]Policy
	calcs    map[string]Calculation
	seq      int
}

func newMemStore() *memStore {
	return &memStore{policies: map[string]Policy{}, calcs: map[string]Calculation{}}
}

func (m *memStore) GetPolicy(_ context.Context, cycleID string) (*Policy, error) {
	p, ok := m.policies[cycleID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) UpsertPolicy(_ context.Context, p Policy) error {
	m.policies[p.CycleID] = p
	return nil
}

func (m *memStore) UpsertCalculation(_ context.Context, c Calculation) (Calculation, error) {
	for id, existing := range m.calcs {
		if existing.EmployeeID == c.EmployeeID && existing.CycleID == c.CycleID {
			if existing.Status != StatusCalculated {
				return Calculation{}, ErrAlreadyPaid
			}
			c.ID = id
			m.calcs[id] = c
			return c, nil
		}
	}
	m.seq++
	c.ID = fmt.Sprintf("calc-%d", m.seq)
	m.calcs[c.ID] = c
	return c, nil
}

func (m *memStore) Get(_ context.Context, id string) (Calculation, error) {
	c, ok := m.calcs[id]
	if !ok {
		return Calculation{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) List(_ context.Context, cycleID, _ string) ([]Calculation, error) {
	var out []Calculation
	for _, c := range m.calcs {
		if c.CycleID == cycleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) MarkPaid(_ context.Context, id string, at time.Time) (Calculation, error) {
	c, ok := m.calcs[id]
	if !ok {
		return Calculation{}, ErrNotFound
	}
	if c.Status != StatusCalculated {
		return Calculation{}, ErrAlreadyPaid
	}
	c.Status = StatusPaid
	c.PaidAt = &at
	m.calcs[id] = c
	return c, nil
}

type fakeEvaluations []evaluation.Evaluation

func (f fakeEvaluations) List(_ context.Context, filter evaluation.Filter, _, _ int) ([]evaluation.Evaluation, error) {
	var out []evaluation.Evaluation
	for _, ev := range f {
		if filter.CycleID != "" && ev.CycleID != filter.CycleID {
			continue
		}
		if filter.EmployeeID != "" && ev.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type fakeGoals map[string]goal.Eligibility

func (f fakeGoals) BonusEligibility(_ context.Context, employeeID, _, rule string) (goal.Eligibility, error) {
	e := f[employeeID]
	e.Rule = rule
	return e, nil
}

type fakeDirectory map[string]employee.Employee

func (f fakeDirectory) Get(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}

type fakeCycles map[string]cycle.Cycle

func (f fakeCycles) Get(_ context.Context, id string) (cycle.Cycle, error) {
	c, ok := f[id]
	if !ok {
		return cycle.Cycle{}, cycle.ErrNotFound
	}
	return c, nil
}

type countingNotifier struct{ intents []notifications.Intent }

func (n *countingNotifier) Notify(_ context.Context, intent notifications.Intent) error {
	n.intents = append(n.intents, intent)
	return nil
}

func score(v float64) *float64 { return &v }

func newTestService(t *testing.T) (*Service, *memStore, *countingNotifier) {
	t.Helper()
	m, err := ParseMultipliers(config.DefaultBonusMultipliers)
	require.NoError(t, err)
	store := newMemStore()
	notifier := &countingNotifier{}
	svc, err := NewService(Deps{
		Store: store,
		Evaluations: fakeEvaluations{
			{ID: "ev-1", CycleID: "cy", EmployeeID: "ana", Status: evaluation.StatusFinalized, FinalScore: score(82.22)},
			{ID: "ev-2", CycleID: "cy", EmployeeID: "bia", Status: evaluation.StatusFinalized, FinalScore: score(95)},
			{ID: "ev-3", CycleID: "cy", EmployeeID: "caio", Status: evaluation.StatusPendingConsensus},
			{ID: "ev-4", CycleID: "cy", EmployeeID: "ghost", Status: evaluation.StatusFinalized, FinalScore: score(70)},
		},
		Goals: fakeGoals{
			"ana": {Total: 2, Completed: 2, Eligible: true},
			"bia": {Total: 1, Completed: 0, Eligible: false},
		},
		Directory: fakeDirectory{
			"ana":  {ID: "ana", Name: "Ana", BaseSalary: 10000},
			"bia":  {ID: "bia", Name: "Bia", BaseSalary: 12000},
			"caio": {ID: "caio", Name: "Caio", BaseSalary: 8000},
		},
		Cycles:   fakeCycles{"cy": {ID: "cy", Name: "Ciclo 2026"}},
		Notifier: notifier,
	}, defaultClassifier(t), Policy{Multipliers: m, EligibilityRule: RuleAll}, "https://avd.test")
	require.NoError(t, err)
	return svc, store, notifier
}

func TestCalculateEligibleEmployee(t *testing.T) {
	svc, _, notifier := newTestService(t)
	calc, err := svc.Calculate(context.Background(), "cy", "ana")
	require.NoError(t, err)

	assert.Equal(t, "supera_expectativas", calc.PerformanceBand)
	assert.Equal(t, 1.5, calc.AppliedMultiplier)
	assert.True(t, calc.Eligible)
	assert.Equal(t, 15000.0, calc.Amount)
	assert.Equal(t, StatusCalculated, calc.Status)
	require.Len(t, notifier.intents, 1)
	assert.Equal(t, notifications.TypeBonusCalculated, notifier.intents[0].Type)
}

func TestCalculateIneligibleEmployeeGetsZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	calc, err := svc.Calculate(context.Background(), "cy", "bia")
	require.NoError(t, err)
	assert.Equal(t, "excepcional", calc.PerformanceBand)
	assert.False(t, calc.Eligible)
	assert.Zero(t, calc.Amount)
}

func TestCalculateRequiresFinalizedEvaluation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Calculate(context.Background(), "cy", "caio")
	assert.ErrorIs(t, err, ErrNotFinalized)
	_, err = svc.Calculate(context.Background(), "cy", "nobody")
	assert.ErrorIs(t, err, ErrNoEvaluation)
}

func TestCycleCalculationIsolatesFailuresAndSkipsPaid(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CalculateCycle(ctx, "cy")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)
	assert.Equal(t, 2, first.Succeeded)
	assert.Equal(t, 1, first.Failed)
	require.Len(t, first.Errors, 1)
	assert.Equal(t, "ghost", first.Errors[0].EmployeeID)

	var anaID string
	for id, c := range store.calcs {
		if c.EmployeeID == "ana" {
			anaID = id
		}
	}
	paid, err := svc.MarkPaid(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	_, err = svc.MarkPaid(ctx, anaID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	second, err := svc.CalculateCycle(ctx, "cy")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, second.Succeeded)
	assert.Len(t, store.calcs, 2)
}

func TestCyclePolicyOverridesDefault(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	m, err := ParseMultipliers("insatisfatorio:0,abaixo_expectativas:0,atende_expectativas:0.5,supera_expectativas:1,excepcional:3")
	require.NoError(t, err)

	p, err := svc.SetPolicy(ctx, Policy{CycleID: "cy", Multipliers: m, EligibilityRule: RuleAny})
	require.NoError(t, err)
	assert.False(t, p.Default)

	calc, err := svc.Calculate(ctx, "cy", "ana")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, calc.Amount)

	_, err = svc.SetPolicy(ctx, Policy{CycleID: "missing", Multipliers: m, EligibilityRule: RuleAny})
	assert.ErrorIs(t, err, cycle.ErrNotFound)
}

func TestNewServiceRejectsInvalidDefaults(t *testing.T) {
	_, err := NewService(Deps{}, defaultClassifier(t), Policy{Multipliers: map[string]float64{}, EligibilityRule: RuleAll}, "")
	assert.ErrorIs(t, err, ErrInvalidMultipliers)
}

func TestRenderStatement(t *testing.T) {
	paidAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	pdf, err := RenderStatement(Calculation{
		EmployeeName:      "Ana Souza",
		FinalScore:        82.22,
		PerformanceBand:   "supera_expectativas",
		AppliedMultiplier: 1.5,
		BaseSalary:        10000,
		Eligible:          true,
		GoalsTotal:        2,
		GoalsCompleted:    2,
		Amount:            15000,
		Status:            StatusPaid,
		PaidAt:            &paidAt,
	}, "Ciclo 2026")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
