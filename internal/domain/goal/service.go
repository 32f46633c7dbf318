package goal

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/notifications"
	"avd/internal/platform/logger"
)

type Cycles interface {
	Get(ctx context.Context, id string) (cycle.Cycle, error)
}

type Directory interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Notifier interface {
	NotifyEmail(ctx context.Context, intent notifications.Intent) error
}

type Options struct {
	ReminderWindowDays int
	EmailDelay         time.Duration
	BaseURL            string
}

type Service struct {
	store     StoreAPI
	cycles    Cycles
	directory Directory
	notifier  Notifier
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store StoreAPI, cycles Cycles, directory Directory, notifier Notifier, opts Options, log *zap.Logger) *Service {
	if opts.ReminderWindowDays <= 0 {
		opts.ReminderWindowDays = 7
	}
	return &Service{
		store:     store,
		cycles:    cycles,
		directory: directory,
		notifier:  notifier,
		opts:      opts,
		log:       logger.OrNop(log),
		now:       time.Now,
	}
}

// CreateSMART validates and stores a goal in draft, returning it with its
// SMART assessment.
func (s *Service) CreateSMART(ctx context.Context, in CreateInput) (Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Unit = strings.TrimSpace(in.Unit)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)

	if !ValidType(in.Type) {
		return Goal{}, ErrInvalidType
	}
	if !ValidCategory(in.Category) {
		return Goal{}, ErrInvalidCategory
	}
	if in.Type == TypeIndividual && in.EmployeeID == "" {
		return Goal{}, ErrEmployeeRequired
	}
	if len([]rune(in.Title)) < minTitleLength {
		return Goal{}, ErrTitleTooShort
	}
	if len([]rune(in.Description)) < minDescLength {
		return Goal{}, ErrDescTooShort
	}
	if in.Weight == 0 {
		in.Weight = DefaultWeight
	}
	if in.Weight < 1 || in.Weight > 100 {
		return Goal{}, ErrInvalidWeight
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return Goal{}, ErrInvalidDates
	}

	c, err := s.cycles.Get(ctx, in.CycleID)
	if err != nil {
		return Goal{}, err
	}
	if c.Status == cycle.StatusClosed {
		return Goal{}, ErrCycleClosed
	}
	if in.EmployeeID != "" {
		if _, err := s.directory.Get(ctx, in.EmployeeID); err != nil {
			return Goal{}, err
		}
	}

	g := Goal{
		CycleID:         in.CycleID,
		EmployeeID:      in.EmployeeID,
		Title:           in.Title,
		Description:     in.Description,
		Type:            in.Type,
		Category:        in.Category,
		Unit:            in.Unit,
		TargetValue:     in.TargetValue,
		Weight:          in.Weight,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          StatusDraft,
		BonusEligible:   in.BonusEligible,
		BonusPercentage: in.BonusPercentage,
		CreatedBy:       in.CreatedBy,
		Smart:           CheckSMART(in.Title, in.Description, in.Unit, in.TargetValue, in.StartDate, in.EndDate),
	}
	id, err := s.store.Create(ctx, g)
	if err != nil {
		return Goal{}, err
	}
	created, err := s.store.Get(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	created.Smart.Feedback = g.Smart.Feedback
	return created, nil
}

// UpdateProgress records a new current value. Reaching the target
// concludes the goal; concluded goals are frozen.
func (s *Service) UpdateProgress(ctx context.Context, in ProgressInput) (Goal, error) {
	if in.CurrentValue < 0 || math.IsNaN(in.CurrentValue) {
		return Goal{}, ErrNegativeProgress
	}
	g, err := s.store.Get(ctx, in.GoalID)
	if err != nil {
		return Goal{}, err
	}
	if g.Status == StatusCompleted {
		return Goal{}, ErrGoalCompleted
	}
	if g.TargetValue == nil || *g.TargetValue <= 0 {
		return Goal{}, ErrNoTarget
	}

	now := s.now()
	previous := g.CurrentValue
	g.CurrentValue = in.CurrentValue
	g.Progress = math.Round(Progress(in.CurrentValue, *g.TargetValue)*100) / 100
	g.Status = StatusInProgress
	g.CompletedAt = nil
	if g.Progress >= progressCompleted {
		g.Status = StatusCompleted
		g.CompletedAt = &now
	}
	upd := ProgressUpdate{
		GoalID:        g.ID,
		PreviousValue: previous,
		NewValue:      in.CurrentValue,
		Progress:      g.Progress,
		Note:          strings.TrimSpace(in.Note),
		UpdatedBy:     in.UpdatedBy,
		CreatedAt:     now,
	}
	return s.store.RecordProgress(ctx, g, upd)
}

func (s *Service) Get(ctx context.Context, id string) (Goal, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) History(ctx context.Context, id string) ([]ProgressUpdate, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListProgress(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	if filter.Type != "" && !ValidType(filter.Type) {
		return nil, ErrInvalidType
	}
	return s.store.List(ctx, filter, limit, offset)
}

// BonusEligibility reports whether an employee's bonus-eligible goals in a
// cycle satisfy rule.
func (s *Service) BonusEligibility(ctx context.Context, employeeID, cycleID, rule string) (Eligibility, error) {
	goals, err := s.store.BonusGoals(ctx, employeeID, cycleID)
	if err != nil {
		return Eligibility{}, err
	}
	return EvaluateEligibility(goals, rule)
}

// RemindDeadlines emails owners of unfinished goals ending within the
// reminder window. Failures are counted per goal.
func (s *Service) RemindDeadlines(ctx context.Context, now time.Time) (BatchSummary, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, s.opts.ReminderWindowDays)
	goals, err := s.store.DueBetween(ctx, from, to)
	if err != nil {
		return BatchSummary{}, err
	}
	var summary BatchSummary
	for i, g := range goals {
		if i > 0 && s.opts.EmailDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.opts.EmailDelay):
			}
		}
		summary.Processed++
		intent := notifications.GoalDeadline(g.EmployeeID, g.Title, g.EndDate.Format("02/01/2006"), g.Progress, s.link(g.ID))
		if err := s.notifier.NotifyEmail(ctx, intent); err != nil {
			summary.Failed++
			s.log.Warn("goal deadline reminder failed",
				zap.String("goalId", g.ID),
				zap.String("employeeId", g.EmployeeID),
				zap.Error(err))
			continue
		}
		summary.Succeeded++
	}
	s.log.Info("goal deadline reminders sent",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *Service) link(goalID string) string {
	return strings.TrimRight(s.opts.BaseURL, "/") + "/metas/" + goalID
}
