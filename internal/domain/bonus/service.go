package bonus

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/evaluation"
	"avd/internal/domain/goal"
	"avd/internal/domain/notifications"
	"avd/internal/platform/logger"
)

type Evaluations interface {
	List(ctx context.Context, filter evaluation.Filter, limit, offset int) ([]evaluation.Evaluation, error)
}

type Goals interface {
	BonusEligibility(ctx context.Context, employeeID, cycleID, rule string) (goal.Eligibility, error)
}

type Directory interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Cycles interface {
	Get(ctx context.Context, id string) (cycle.Cycle, error)
}

type Notifier interface {
	Notify(ctx context.Context, intent notifications.Intent) error
}

type Deps struct {
	Store       StoreAPI
	Evaluations Evaluations
	Goals       Goals
	Directory   Directory
	Cycles      Cycles
	Notifier    Notifier
	Log         *zap.Logger
}

type Service struct {
	store         StoreAPI
	evaluations   Evaluations
	goals         Goals
	directory     Directory
	cycles        Cycles
	notifier      Notifier
	classifier    *Classifier
	defaultPolicy Policy
	baseURL       string
	log           *zap.Logger
	now           func() time.Time
}

// NewService validates the default policy against the classifier so a bad
// configuration fails at boot.
func NewService(deps Deps, classifier *Classifier, defaults Policy, baseURL string) (*Service, error) {
	defaults.Default = true
	defaults.CycleID = ""
	if err := ValidatePolicy(defaults, classifier); err != nil {
		return nil, err
	}
	return &Service{
		store:         deps.Store,
		evaluations:   deps.Evaluations,
		goals:         deps.Goals,
		directory:     deps.Directory,
		cycles:        deps.Cycles,
		notifier:      deps.Notifier,
		classifier:    classifier,
		defaultPolicy: defaults,
		baseURL:       strings.TrimRight(baseURL, "/"),
		log:           logger.OrNop(deps.Log),
		now:           time.Now,
	}, nil
}

func (s *Service) Classifier() *Classifier {
	return s.classifier
}

// Policy returns the cycle policy, or the configured default when the
// cycle has none.
func (s *Service) Policy(ctx context.Context, cycleID string) (Policy, error) {
	p, err := s.store.GetPolicy(ctx, cycleID)
	if err != nil {
		return Policy{}, err
	}
	if p == nil {
		def := s.defaultPolicy
		def.CycleID = cycleID
		return def, nil
	}
	return *p, nil
}

func (s *Service) SetPolicy(ctx context.Context, p Policy) (Policy, error) {
	if _, err := s.cycles.Get(ctx, p.CycleID); err != nil {
		return Policy{}, err
	}
	p.Default = false
	if err := ValidatePolicy(p, s.classifier); err != nil {
		return Policy{}, err
	}
	if err := s.store.UpsertPolicy(ctx, p); err != nil {
		return Policy{}, err
	}
	return s.Policy(ctx, p.CycleID)
}

// Calculate computes and stores the bonus of one employee for a cycle.
// Recalculating replaces the previous figure until it is paid.
func (s *Service) Calculate(ctx context.Context, cycleID, employeeID string) (Calculation, error) {
	c, err := s.cycles.Get(ctx, cycleID)
	if err != nil {
		return Calculation{}, err
	}
	policy, err := s.Policy(ctx, cycleID)
	if err != nil {
		return Calculation{}, err
	}
	evs, err := s.evaluations.List(ctx, evaluation.Filter{CycleID: cycleID, EmployeeID: employeeID}, 1, 0)
	if err != nil {
		return Calculation{}, err
	}
	if len(evs) == 0 {
		return Calculation{}, ErrNoEvaluation
	}
	return s.calculate(ctx, c, policy, evs[0])
}

func (s *Service) calculate(ctx context.Context, c cycle.Cycle, policy Policy, ev evaluation.Evaluation) (Calculation, error) {
	if ev.Status != evaluation.StatusFinalized || ev.FinalScore == nil {
		return Calculation{}, ErrNotFinalized
	}
	band, err := s.classifier.Classify(*ev.FinalScore)
	if err != nil {
		return Calculation{}, err
	}
	eligibility, err := s.goals.BonusEligibility(ctx, ev.EmployeeID, c.ID, policy.EligibilityRule)
	if err != nil {
		return Calculation{}, err
	}
	emp, err := s.directory.Get(ctx, ev.EmployeeID)
	if err != nil {
		return Calculation{}, err
	}
	multiplier := policy.Multipliers[band]
	calc := Calculation{
		CycleID:           c.ID,
		EmployeeID:        ev.EmployeeID,
		EvaluationID:      ev.ID,
		FinalScore:        *ev.FinalScore,
		PerformanceBand:   band,
		AppliedMultiplier: multiplier,
		BaseSalary:        emp.BaseSalary,
		Eligible:          eligibility.Eligible,
		GoalsTotal:        eligibility.Total,
		GoalsCompleted:    eligibility.Completed,
		Amount:            Amount(emp.BaseSalary, multiplier, eligibility.Eligible),
		Status:            StatusCalculated,
		CalculatedAt:      s.now(),
	}
	saved, err := s.store.UpsertCalculation(ctx, calc)
	if err != nil {
		return Calculation{}, err
	}
	if s.notifier != nil {
		intent := notifications.BonusCalculated(saved.EmployeeID, c.Name, saved.Amount, saved.Eligible, s.baseURL+"/bonus/"+saved.ID)
		if err := s.notifier.Notify(ctx, intent); err != nil {
			s.log.Warn("bonus notification failed", zap.String("calculationId", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

// CalculateCycle calculates every finalized evaluation of the cycle. Paid
// calculations are skipped; other failures are isolated per employee.
func (s *Service) CalculateCycle(ctx context.Context, cycleID string) (BatchResult, error) {
	c, err := s.cycles.Get(ctx, cycleID)
	if err != nil {
		return BatchResult{}, err
	}
	policy, err := s.Policy(ctx, cycleID)
	if err != nil {
		return BatchResult{}, err
	}
	evs, err := s.evaluations.List(ctx, evaluation.Filter{CycleID: cycleID, Status: evaluation.StatusFinalized}, batchLimit, 0)
	if err != nil {
		return BatchResult{}, err
	}
	result := BatchResult{Errors: []ItemError{}}
	for _, ev := range evs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++
		_, err := s.calculate(ctx, c, policy, ev)
		switch {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, ErrAlreadyPaid):
			result.Skipped++
		default:
			result.Failed++
			result.Errors = append(result.Errors, ItemError{EmployeeID: ev.EmployeeID, Error: err.Error()})
			s.log.Warn("bonus calculation failed",
				zap.String("cycleId", cycleID),
				zap.String("employeeId", ev.EmployeeID),
				zap.Error(err))
		}
	}
	s.log.Info("bonus cycle calculated",
		zap.String("cycleId", cycleID),
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (Calculation, error) {
	return s.store.MarkPaid(ctx, id, s.now())
}

func (s *Service) Get(ctx context.Context, id string) (Calculation, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, cycleID, status string) ([]Calculation, error) {
	return s.store.List(ctx, cycleID, status)
}
