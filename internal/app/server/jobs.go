package server

import (
	"context"
	"time"

	"avd/internal/domain/evaluation"
	"avd/internal/domain/goal"
	"avd/internal/domain/timeclock"
	"avd/internal/platform/config"
	"avd/internal/platform/jobs"
)

const (
	JobDiscrepancies      = "timeclock.discrepancies"
	JobConsensusReminders = "evaluation.consensus_reminders"
	JobGoalReminders      = "goal.deadline_reminders"
)

type jobTargets struct {
	Timeclock interface {
		DetectDiscrepancies(ctx context.Context, day time.Time) (timeclock.DetectionSummary, error)
	}
	Evaluations interface {
		RemindPendingConsensus(ctx context.Context, now time.Time) (evaluation.BatchSummary, error)
	}
	Goals interface {
		RemindDeadlines(ctx context.Context, now time.Time) (goal.BatchSummary, error)
	}
}

// registerJobs adds the recurring jobs. They are registered even when the
// scheduler is disabled so they stay available for manual runs.
func registerJobs(s *jobs.Scheduler, cfg config.Config, t jobTargets) error {
	// The nightly run closes out the previous day.
	if err := s.Register(JobDiscrepancies, cfg.DiscrepancyCron, func(ctx context.Context, at time.Time) (any, error) {
		return t.Timeclock.DetectDiscrepancies(ctx, at.AddDate(0, 0, -1))
	}); err != nil {
		return err
	}
	if err := s.Register(JobConsensusReminders, cfg.ConsensusReminderCron, func(ctx context.Context, at time.Time) (any, error) {
		return t.Evaluations.RemindPendingConsensus(ctx, at)
	}); err != nil {
		return err
	}
	return s.Register(JobGoalReminders, cfg.GoalReminderCron, func(ctx context.Context, at time.Time) (any, error) {
		return t.Goals.RemindDeadlines(ctx, at)
	})
}
