package evaluation

import (
	"context"
	"time"
)

// Submission is one rating batch plus the workflow move it causes. The
// store applies both atomically and only if the evaluation is still in
// Expected.
type Submission struct {
	EvaluationID     string
	Expected         string
	Next             string
	Ratings          []Rating
	ManagerSubmitted bool
	SelfScore        *float64
	ManagerScore     *float64
	FinalScore       *float64
	Band             string
	At               time.Time
}

type SummaryRow struct {
	Status   string
	Band     string
	Count    int
	ScoreSum float64
	Scored   int
}

type StoreAPI interface {
	// Enroll returns the evaluation for (cycle, employee), creating it when
	// absent. created is false when it already existed.
	Enroll(ctx context.Context, cycleID, employeeID, managerID string) (ev Evaluation, created bool, err error)
	Get(ctx context.Context, id string) (Evaluation, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, error)
	ListRatings(ctx context.Context, evaluationID string) ([]Rating, error)
	ApplySubmission(ctx context.Context, sub Submission) (Evaluation, error)
	ApplyConsensus(ctx context.Context, id, byEmployeeID string, score float64, notes string, at time.Time) (Evaluation, error)
	// ApplyRejection moves pending_consensus back to self_done and
	// supersedes the manager's ratings in the same transaction.
	ApplyRejection(ctx context.Context, id, byEmployeeID, reason string, at time.Time) (Evaluation, error)
	ApplyFinalize(ctx context.Context, id string, finalScore float64, band string, at time.Time) (Evaluation, error)
	SummaryRows(ctx context.Context, cycleID string) ([]SummaryRow, error)
	PendingConsensus(ctx context.Context, pendingBefore, remindedBefore time.Time) ([]ReminderCandidate, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
}
