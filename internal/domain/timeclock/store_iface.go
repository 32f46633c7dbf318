package timeclock

import (
	"context"
	"time"
)

type StoreAPI interface {
	// UpsertRecord replaces the employee's record for that day.
	UpsertRecord(ctx context.Context, r Record) (string, error)
	CreateActivity(ctx context.Context, a Activity) (Activity, error)
	// DayTotals lists employees with clock time on day, with the sum of
	// their activity minutes for the same day.
	DayTotals(ctx context.Context, day time.Time) ([]DayTotal, error)
	// SaveDiscrepancy inserts the day's discrepancy and, when given, its
	// alert in one transaction. An existing discrepancy for the same
	// employee and day leaves both untouched and reports created=false.
	SaveDiscrepancy(ctx context.Context, d Discrepancy, alert *Alert) (created, alertCreated bool, err error)
	GetDiscrepancy(ctx context.Context, id string) (Discrepancy, error)
	ListDiscrepancies(ctx context.Context, filter Filter, limit int) ([]Discrepancy, error)
	Justify(ctx context.Context, id, justification, reviewerID string, at time.Time) (Discrepancy, error)
	Stats(ctx context.Context, from, to time.Time) (Stats, error)
	ListAlerts(ctx context.Context, status string, limit int) ([]Alert, error)
	ResolveAlert(ctx context.Context, id, userID string, at time.Time) (Alert, error)
}
