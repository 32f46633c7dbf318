package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avd/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const evaluationColumns = `id, cycle_id, employee_id, COALESCE(manager_id::text, ''), workflow_status,
  self_score::float8, manager_score::float8, consensus_score::float8, final_score::float8,
  COALESCE(performance_band, ''), COALESCE(consensus_notes, ''), COALESCE(consensus_by::text, ''),
  COALESCE(rejection_reason, ''), COALESCE(rejected_by::text, ''),
  self_submitted_at, manager_submitted_at, pending_consensus_at, consensus_at, finalized_at, last_reminder_at, rejected_at,
  created_at, updated_at`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var ev Evaluation
	err := row.Scan(&ev.ID, &ev.CycleID, &ev.EmployeeID, &ev.ManagerID, &ev.Status,
		&ev.SelfScore, &ev.ManagerScore, &ev.ConsensusScore, &ev.FinalScore,
		&ev.PerformanceBand, &ev.ConsensusNotes, &ev.ConsensusBy,
		&ev.RejectionReason, &ev.RejectedBy,
		&ev.SelfSubmittedAt, &ev.ManagerSubmittedAt, &ev.PendingConsensusAt, &ev.ConsensusAt, &ev.FinalizedAt, &ev.LastReminderAt, &ev.RejectedAt,
		&ev.CreatedAt, &ev.UpdatedAt)
	return ev, err
}

func (s *Store) Enroll(ctx context.Context, cycleID, employeeID, managerID string) (Evaluation, bool, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (cycle_id, employee_id, manager_id)
    VALUES ($1,$2,$3)
    ON CONFLICT (cycle_id, employee_id) DO NOTHING
    RETURNING `+evaluationColumns, cycleID, employeeID, db.NullIfEmpty(managerID))
	ev, err := scanEvaluation(row)
	if err == nil {
		return ev, true, nil
	}
	if !db.IsNoRows(err) {
		return Evaluation{}, false, err
	}
	row = s.DB.QueryRow(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE cycle_id = $1 AND employee_id = $2", cycleID, employeeID)
	ev, err = scanEvaluation(row)
	return ev, false, err
}

func (s *Store) Get(ctx context.Context, id string) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1", id))
	if db.IsNoRows(err) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, error) {
	query := "SELECT " + evaluationColumns + " FROM evaluations WHERE 1=1"
	var args []any
	add := func(clause, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}
	add("cycle_id", filter.CycleID)
	add("employee_id", filter.EmployeeID)
	add("manager_id", filter.ManagerID)
	add("workflow_status", filter.Status)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) ListRatings(ctx context.Context, evaluationID string) ([]Rating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, evaluation_id, competency_id, rater_id, rater_role, score::float8, COALESCE(comment, ''), created_at
    FROM competency_ratings WHERE evaluation_id = $1 AND superseded_at IS NULL
    ORDER BY created_at
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Rating{}
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.ID, &r.EvaluationID, &r.CompetencyID, &r.RaterID, &r.RaterRole, &r.Score, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ApplySubmission(ctx context.Context, sub Submission) (Evaluation, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	defer tx.Rollback(ctx)

	for _, r := range sub.Ratings {
		_, err := tx.Exec(ctx, `
      INSERT INTO competency_ratings (evaluation_id, competency_id, rater_id, rater_role, score, comment, created_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, sub.EvaluationID, r.CompetencyID, r.RaterID, r.RaterRole, r.Score, db.NullIfEmpty(r.Comment), sub.At)
		if db.IsUniqueViolation(err, "competency_ratings_unique") {
			return Evaluation{}, ErrDuplicateRating
		}
		if err != nil {
			return Evaluation{}, err
		}
	}

	var row pgx.Row
	if sub.Next == sub.Expected {
		row = tx.QueryRow(ctx, `
      UPDATE evaluations SET updated_at = now()
      WHERE id = $1 AND workflow_status <> 'finalized'
      RETURNING `+evaluationColumns, sub.EvaluationID)
	} else {
		row = tx.QueryRow(ctx, `
      UPDATE evaluations SET
        workflow_status = $3::text,
        self_score = COALESCE($4::numeric, self_score),
        manager_score = COALESCE($5::numeric, manager_score),
        final_score = COALESCE($6::numeric, final_score),
        performance_band = COALESCE($7::text, performance_band),
        self_submitted_at = CASE WHEN $3::text = 'self_done' THEN $8::timestamptz ELSE self_submitted_at END,
        manager_submitted_at = CASE WHEN $9::boolean THEN $8::timestamptz ELSE manager_submitted_at END,
        pending_consensus_at = CASE WHEN $3::text = 'pending_consensus' THEN $8::timestamptz ELSE pending_consensus_at END,
        finalized_at = CASE WHEN $3::text = 'finalized' THEN $8::timestamptz ELSE finalized_at END,
        updated_at = now()
      WHERE id = $1 AND workflow_status = $2
      RETURNING `+evaluationColumns,
			sub.EvaluationID, sub.Expected, sub.Next, sub.SelfScore, sub.ManagerScore, sub.FinalScore,
			db.NullIfEmpty(sub.Band), sub.At, sub.ManagerSubmitted)
	}
	ev, err := scanEvaluation(row)
	if db.IsNoRows(err) {
		return Evaluation{}, ErrConcurrentUpdate
	}
	if err != nil {
		return Evaluation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

func (s *Store) ApplyConsensus(ctx context.Context, id, byEmployeeID string, score float64, notes string, at time.Time) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    UPDATE evaluations SET
      workflow_status = 'consensus_done',
      consensus_score = $2,
      consensus_notes = $3,
      consensus_by = $4,
      consensus_at = $5,
      updated_at = now()
    WHERE id = $1 AND workflow_status = 'pending_consensus'
    RETURNING `+evaluationColumns, id, score, db.NullIfEmpty(notes), db.NullIfEmpty(byEmployeeID), at))
	if db.IsNoRows(err) {
		return Evaluation{}, ErrConcurrentUpdate
	}
	return ev, err
}

// ApplyRejection sends a pending_consensus evaluation back to self_done.
// The manager's ratings are superseded so the manager can rate again.
func (s *Store) ApplyRejection(ctx context.Context, id, byEmployeeID, reason string, at time.Time) (Evaluation, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	defer tx.Rollback(ctx)

	ev, err := scanEvaluation(tx.QueryRow(ctx, `
    UPDATE evaluations SET
      workflow_status = 'self_done',
      manager_score = NULL,
      manager_submitted_at = NULL,
      pending_consensus_at = NULL,
      last_reminder_at = NULL,
      rejection_reason = $2,
      rejected_by = $3,
      rejected_at = $4,
      updated_at = now()
    WHERE id = $1 AND workflow_status = 'pending_consensus'
    RETURNING `+evaluationColumns, id, reason, db.NullIfEmpty(byEmployeeID), at))
	if db.IsNoRows(err) {
		return Evaluation{}, ErrConcurrentUpdate
	}
	if err != nil {
		return Evaluation{}, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE competency_ratings SET superseded_at = $2
    WHERE evaluation_id = $1 AND rater_role = 'manager' AND superseded_at IS NULL
  `, id, at); err != nil {
		return Evaluation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

func (s *Store) ApplyFinalize(ctx context.Context, id string, finalScore float64, band string, at time.Time) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    UPDATE evaluations SET
      workflow_status = 'finalized',
      final_score = $2,
      performance_band = $3,
      finalized_at = $4,
      updated_at = now()
    WHERE id = $1 AND workflow_status = 'consensus_done'
    RETURNING `+evaluationColumns, id, finalScore, band, at))
	if db.IsNoRows(err) {
		return Evaluation{}, ErrConcurrentUpdate
	}
	return ev, err
}

func (s *Store) SummaryRows(ctx context.Context, cycleID string) ([]SummaryRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT workflow_status, COALESCE(performance_band, ''), COUNT(*),
      COALESCE(SUM(final_score) FILTER (WHERE workflow_status = 'finalized'), 0)::float8,
      COUNT(final_score) FILTER (WHERE workflow_status = 'finalized')
    FROM evaluations
    WHERE cycle_id = $1
    GROUP BY workflow_status, performance_band
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.Status, &r.Band, &r.Count, &r.ScoreSum, &r.Scored); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) PendingConsensus(ctx context.Context, pendingBefore, remindedBefore time.Time) ([]ReminderCandidate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.employee_id, emp.name, COALESCE(e.manager_id::text, ''), e.pending_consensus_at
    FROM evaluations e
    JOIN employees emp ON emp.id = e.employee_id
    WHERE e.workflow_status = 'pending_consensus'
      AND e.pending_consensus_at <= $1
      AND (e.last_reminder_at IS NULL OR e.last_reminder_at <= $2)
    ORDER BY e.pending_consensus_at
  `, pendingBefore, remindedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		if err := rows.Scan(&c.EvaluationID, &c.EmployeeID, &c.EmployeeName, &c.ManagerID, &c.PendingSince); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) MarkReminded(ctx context.Context, id string, at time.Time) error {
	_, err := s.DB.Exec(ctx, "UPDATE evaluations SET last_reminder_at = $2 WHERE id = $1", id, at)
	return err
}
