package timeclock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avd/internal/domain/employee"
	"avd/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) UpsertRecord(ctx context.Context, r Record) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO time_clock_records (employee_id, record_date, clock_in, clock_out, break_minutes, worked_minutes, source)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT ON CONSTRAINT time_clock_records_employee_date_unique DO UPDATE SET
      clock_in = EXCLUDED.clock_in,
      clock_out = EXCLUDED.clock_out,
      break_minutes = EXCLUDED.break_minutes,
      worked_minutes = EXCLUDED.worked_minutes,
      source = EXCLUDED.source,
      updated_at = now()
    RETURNING id
  `, r.EmployeeID, r.Date, r.ClockIn, r.ClockOut, r.BreakMinutes, r.WorkedMinutes, r.Source).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return "", employee.ErrNotFound
	}
	return id, err
}

func (s *Store) CreateActivity(ctx context.Context, a Activity) (Activity, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO activity_logs (employee_id, activity_date, minutes, description)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at
  `, a.EmployeeID, a.Date, a.Minutes, a.Description).Scan(&a.ID, &a.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return Activity{}, employee.ErrNotFound
	}
	return a, err
}

func (s *Store) DayTotals(ctx context.Context, day time.Time) ([]DayTotal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.employee_id, e.name, COALESCE(e.manager_id::text, ''), r.worked_minutes,
      COALESCE((SELECT SUM(a.minutes) FROM activity_logs a
        WHERE a.employee_id = r.employee_id AND a.activity_date = r.record_date), 0)
    FROM time_clock_records r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.record_date = $1 AND r.worked_minutes > 0
    ORDER BY e.name
  `, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.EmployeeID, &d.EmployeeName, &d.ManagerID, &d.ClockMinutes, &d.ActivityMinutes); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) SaveDiscrepancy(ctx context.Context, d Discrepancy, alert *Alert) (bool, bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    INSERT INTO time_discrepancies (employee_id, discrepancy_date, clock_minutes, activity_minutes,
      difference_minutes, difference_percentage, discrepancy_type, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT ON CONSTRAINT time_discrepancies_employee_date_unique DO NOTHING
  `, d.EmployeeID, d.Date, d.ClockMinutes, d.ActivityMinutes, d.DifferenceMinutes, d.DifferencePercentage, d.Type, d.Status)
	if err != nil {
		return false, false, err
	}
	if tag.RowsAffected() == 0 {
		return false, false, nil
	}

	alertCreated := false
	if alert != nil {
		tag, err := tx.Exec(ctx, `
      INSERT INTO alerts (employee_id, type, severity, title, message, reference_date, status)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      ON CONFLICT ON CONSTRAINT alerts_employee_type_date_unique DO NOTHING
    `, alert.EmployeeID, alert.Type, alert.Severity, alert.Title, alert.Message, alert.ReferenceDate, alert.Status)
		if err != nil {
			return false, false, err
		}
		alertCreated = tag.RowsAffected() == 1
	}
	if err := tx.Commit(ctx); err != nil {
		return false, false, err
	}
	return true, alertCreated, nil
}

const discrepancyColumns = `d.id, d.employee_id, e.name, d.discrepancy_date, d.clock_minutes, d.activity_minutes,
  d.difference_minutes, d.difference_percentage::float8, d.discrepancy_type, d.status,
  COALESCE(d.justification, ''), COALESCE(d.reviewed_by::text, ''), d.reviewed_at, d.created_at`

func scanDiscrepancy(row pgx.Row) (Discrepancy, error) {
	var d Discrepancy
	err := row.Scan(&d.ID, &d.EmployeeID, &d.EmployeeName, &d.Date, &d.ClockMinutes, &d.ActivityMinutes,
		&d.DifferenceMinutes, &d.DifferencePercentage, &d.Type, &d.Status,
		&d.Justification, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt)
	return d, err
}

func (s *Store) GetDiscrepancy(ctx context.Context, id string) (Discrepancy, error) {
	d, err := scanDiscrepancy(s.DB.QueryRow(ctx, `
    SELECT `+discrepancyColumns+`
    FROM time_discrepancies d JOIN employees e ON e.id = d.employee_id
    WHERE d.id = $1
  `, id))
	if db.IsNoRows(err) {
		return Discrepancy{}, ErrNotFound
	}
	return d, err
}

func (s *Store) ListDiscrepancies(ctx context.Context, filter Filter, limit int) ([]Discrepancy, error) {
	query := "SELECT " + discrepancyColumns + " FROM time_discrepancies d JOIN employees e ON e.id = d.employee_id WHERE 1=1"
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}
	if filter.EmployeeID != "" {
		add(" AND d.employee_id = $%d", filter.EmployeeID)
	}
	if filter.From != nil {
		add(" AND d.discrepancy_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add(" AND d.discrepancy_date <= $%d", *filter.To)
	}
	if filter.Type != "" {
		add(" AND d.discrepancy_type = $%d", filter.Type)
	}
	if filter.Status != "" {
		add(" AND d.status = $%d", filter.Status)
	}
	if filter.MinPercentage > 0 {
		add(" AND d.difference_percentage >= $%d", filter.MinPercentage)
	}
	add(" ORDER BY d.discrepancy_date DESC, e.name LIMIT $%d", limit)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Discrepancy
	for rows.Next() {
		d, err := scanDiscrepancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Justify(ctx context.Context, id, justification, reviewerID string, at time.Time) (Discrepancy, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE time_discrepancies SET
      status = 'justified',
      justification = $2,
      reviewed_by = $3,
      reviewed_at = $4
    WHERE id = $1 AND status = 'pending'
  `, id, justification, db.NullIfEmpty(reviewerID), at)
	if err != nil {
		return Discrepancy{}, err
	}
	current, err := s.GetDiscrepancy(ctx, id)
	if err != nil {
		return Discrepancy{}, err
	}
	if tag.RowsAffected() == 0 {
		return Discrepancy{}, ErrAlreadyReviewed
	}
	return current, nil
}

func (s *Store) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	st := Stats{ByType: map[string]int{}}
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(*) FROM time_clock_records WHERE record_date BETWEEN $1 AND $2
  `, from, to).Scan(&st.TotalRecords); err != nil {
		return Stats{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT discrepancy_type, COUNT(*), COUNT(*) FILTER (WHERE difference_percentage > 50)
    FROM time_discrepancies
    WHERE discrepancy_date BETWEEN $1 AND $2
    GROUP BY discrepancy_type
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			kind            string
			count, critical int
		)
		if err := rows.Scan(&kind, &count, &critical); err != nil {
			return Stats{}, err
		}
		st.ByType[kind] = count
		st.TotalDiscrepancies += count
		st.CriticalDiscrepancies += critical
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(*) FROM alerts
    WHERE status = 'open' AND reference_date BETWEEN $1 AND $2
  `, from, to).Scan(&st.OpenAlerts); err != nil {
		return Stats{}, err
	}
	return st, nil
}

const alertColumns = `id, employee_id, type, severity, title, message, reference_date, status,
  COALESCE(resolved_by::text, ''), resolved_at, created_at`

func scanAlert(row pgx.Row) (Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Type, &a.Severity, &a.Title, &a.Message, &a.ReferenceDate, &a.Status,
		&a.ResolvedBy, &a.ResolvedAt, &a.CreatedAt)
	return a, err
}

func (s *Store) ListAlerts(ctx context.Context, status string, limit int) ([]Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts"
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY reference_date DESC, created_at DESC LIMIT $%d", len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ResolveAlert(ctx context.Context, id, userID string, at time.Time) (Alert, error) {
	a, err := scanAlert(s.DB.QueryRow(ctx, `
    UPDATE alerts SET status = 'resolved', resolved_by = $2, resolved_at = $3
    WHERE id = $1 AND status = 'open'
    RETURNING `+alertColumns, id, db.NullIfEmpty(userID), at))
	if db.IsNoRows(err) {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM alerts WHERE id = $1)", id).Scan(&exists); err != nil {
			return Alert{}, err
		}
		if !exists {
			return Alert{}, ErrAlertNotFound
		}
		return Alert{}, ErrAlertResolved
	}
	return a, err
}
