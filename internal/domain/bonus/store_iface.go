package bonus

import (
	"context"
	"time"
)

type StoreAPI interface {
	GetPolicy(ctx context.Context, cycleID string) (*Policy, error)
	UpsertPolicy(ctx context.Context, p Policy) error
	// UpsertCalculation writes the calculation while it is still
	// calculado; a paid row yields ErrAlreadyPaid.
	UpsertCalculation(ctx context.Context, c Calculation) (Calculation, error)
	Get(ctx context.Context, id string) (Calculation, error)
	List(ctx context.Context, cycleID, status string) ([]Calculation, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (Calculation, error)
}
