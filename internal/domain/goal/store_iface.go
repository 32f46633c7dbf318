package goal

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, g Goal) (string, error)
	Get(ctx context.Context, id string) (Goal, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, error)
	// RecordProgress stores the new value with its history row. It fails
	// with ErrGoalCompleted if the goal was concluded in the meantime.
	RecordProgress(ctx context.Context, g Goal, upd ProgressUpdate) (Goal, error)
	ListProgress(ctx context.Context, goalID string) ([]ProgressUpdate, error)
	// BonusGoals returns the bonus-eligible goals that count for an
	// employee in a cycle, organizational ones included.
	BonusGoals(ctx context.Context, employeeID, cycleID string) ([]Goal, error)
	DueBetween(ctx context.Context, from, to time.Time) ([]Goal, error)
}
