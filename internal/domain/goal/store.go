package goal

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

const goalColumns = `id, cycle_id, COALESCE(employee_id::text, ''), title, description, type, category,
  COALESCE(measurement_unit, ''), target_value::float8, current_value::float8, progress::float8, weight,
  start_date, end_date, status, bonus_eligible, bonus_percentage::float8,
  is_specific, is_measurable, is_achievable, is_relevant, is_time_bound, smart_score,
  COALESCE(created_by::text, ''), completed_at, created_at, updated_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.CycleID, &g.EmployeeID, &g.Title, &g.Description, &g.Type, &g.Category,
		&g.Unit, &g.TargetValue, &g.CurrentValue, &g.Progress, &g.Weight,
		&g.StartDate, &g.EndDate, &g.Status, &g.BonusEligible, &g.BonusPercentage,
		&g.Smart.Specific, &g.Smart.Measurable, &g.Smart.Achievable, &g.Smart.Relevant, &g.Smart.TimeBound, &g.Smart.Score,
		&g.CreatedBy, &g.CompletedAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (s *Store) Create(ctx context.Context, g Goal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (cycle_id, employee_id, title, description, type, category, measurement_unit,
      target_value, weight, start_date, end_date, status, bonus_eligible, bonus_percentage,
      smart_score, is_specific, is_measurable, is_achievable, is_relevant, is_time_bound, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
    RETURNING id
  `, g.CycleID, db.NullIfEmpty(g.EmployeeID), g.Title, g.Description, g.Type, g.Category, db.NullIfEmpty(g.Unit),
		g.TargetValue, g.Weight, g.StartDate, g.EndDate, g.Status, g.BonusEligible, g.BonusPercentage,
		g.Smart.Score, g.Smart.Specific, g.Smart.Measurable, g.Smart.Achievable, g.Smart.Relevant, g.Smart.TimeBound,
		db.NullIfEmpty(g.CreatedBy)).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id string) (Goal, error) {
	g, err := scanGoal(s.DB.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", id))
	if db.IsNoRows(err) {
		return Goal{}, ErrNotFound
	}
	return g, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND (employee_id = $%d OR type = 'organizational')", len(args))
	}
	for _, f := range []struct{ col, value string }{
		{"cycle_id", filter.CycleID},
		{"status", filter.Status},
		{"type", filter.Type},
		{"category", filter.Category},
	} {
		if f.value == "" {
			continue
		}
		args = append(args, f.value)
		query += fmt.Sprintf(" AND %s = $%d", f.col, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY end_date, created_at LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return s.queryGoals(ctx, query, args...)
}

func (s *Store) RecordProgress(ctx context.Context, g Goal, upd ProgressUpdate) (Goal, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Goal{}, err
	}
	defer tx.Rollback(ctx)

	updated, err := scanGoal(tx.QueryRow(ctx, `
    UPDATE goals SET
      current_value = $2,
      progress = $3,
      status = $4,
      completed_at = $5,
      updated_at = now()
    WHERE id = $1 AND status <> 'concluida'
    RETURNING `+goalColumns, g.ID, g.CurrentValue, g.Progress, g.Status, g.CompletedAt))
	if db.IsNoRows(err) {
		return Goal{}, ErrGoalCompleted
	}
	if err != nil {
		return Goal{}, err
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO goal_progress_updates (goal_id, previous_value, new_value, progress, note, updated_by, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, g.ID, upd.PreviousValue, upd.NewValue, upd.Progress, db.NullIfEmpty(upd.Note), db.NullIfEmpty(upd.UpdatedBy), upd.CreatedAt); err != nil {
		return Goal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Goal{}, err
	}
	return updated, nil
}

func (s *Store) ListProgress(ctx context.Context, goalID string) ([]ProgressUpdate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, previous_value::float8, new_value::float8, progress::float8,
      COALESCE(note, ''), COALESCE(updated_by::text, ''), created_at
    FROM goal_progress_updates WHERE goal_id = $1
    ORDER BY created_at
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProgressUpdate{}
	for rows.Next() {
		var u ProgressUpdate
		if err := rows.Scan(&u.ID, &u.GoalID, &u.PreviousValue, &u.NewValue, &u.Progress, &u.Note, &u.UpdatedBy, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) BonusGoals(ctx context.Context, employeeID, cycleID string) ([]Goal, error) {
	return s.queryGoals(ctx, "SELECT "+goalColumns+` FROM goals
    WHERE cycle_id = $2 AND bonus_eligible = true
      AND (employee_id = $1 OR type = 'organizational')
    ORDER BY created_at`, employeeID, cycleID)
}

func (s *Store) DueBetween(ctx context.Context, from, to time.Time) ([]Goal, error) {
	return s.queryGoals(ctx, "SELECT "+goalColumns+` FROM goals
    WHERE status <> 'concluida' AND employee_id IS NOT NULL
      AND end_date >= $1 AND end_date <= $2
    ORDER BY end_date`, from, to)
}

func (s *Store) queryGoals(ctx context.Context, query string, args ...any) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
