package bonus

import (
	"context"
	"encoding/json"
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

func (s *Store) GetPolicy(ctx context.Context, cycleID string) (*Policy, error) {
	var raw []byte
	var updatedAt time.Time
	p := Policy{CycleID: cycleID}
	err := s.DB.QueryRow(ctx, `
    SELECT multipliers, eligibility_rule, updated_at FROM bonus_policies WHERE cycle_id = $1
  `, cycleID).Scan(&raw, &p.EligibilityRule, &updatedAt)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Multipliers); err != nil {
		return nil, fmt.Errorf("decode multipliers for cycle %s: %w", cycleID, err)
	}
	p.UpdatedAt = &updatedAt
	return &p, nil
}

func (s *Store) UpsertPolicy(ctx context.Context, p Policy) error {
	raw, err := json.Marshal(p.Multipliers)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO bonus_policies (cycle_id, multipliers, eligibility_rule)
    VALUES ($1,$2,$3)
    ON CONFLICT (cycle_id) DO UPDATE
    SET multipliers = EXCLUDED.multipliers, eligibility_rule = EXCLUDED.eligibility_rule, updated_at = now()
  `, p.CycleID, raw, p.EligibilityRule)
	return err
}

const calculationColumns = `b.id, b.cycle_id, b.employee_id, e.name, b.evaluation_id, b.final_score::float8, b.performance_band,
  b.applied_multiplier::float8, b.base_salary::float8, b.eligible, b.goals_total, b.goals_completed,
  b.bonus_amount::float8, b.status, b.calculated_at, b.paid_at`

func scanCalculation(row pgx.Row) (Calculation, error) {
	var c Calculation
	err := row.Scan(&c.ID, &c.CycleID, &c.EmployeeID, &c.EmployeeName, &c.EvaluationID, &c.FinalScore, &c.PerformanceBand,
		&c.AppliedMultiplier, &c.BaseSalary, &c.Eligible, &c.GoalsTotal, &c.GoalsCompleted,
		&c.Amount, &c.Status, &c.CalculatedAt, &c.PaidAt)
	return c, err
}

func (s *Store) UpsertCalculation(ctx context.Context, c Calculation) (Calculation, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO bonus_calculations (cycle_id, employee_id, evaluation_id, final_score, performance_band,
      applied_multiplier, base_salary, eligible, goals_total, goals_completed, bonus_amount, status, calculated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'calculado',$12)
    ON CONFLICT (employee_id, cycle_id) DO UPDATE SET
      evaluation_id = EXCLUDED.evaluation_id,
      final_score = EXCLUDED.final_score,
      performance_band = EXCLUDED.performance_band,
      applied_multiplier = EXCLUDED.applied_multiplier,
      base_salary = EXCLUDED.base_salary,
      eligible = EXCLUDED.eligible,
      goals_total = EXCLUDED.goals_total,
      goals_completed = EXCLUDED.goals_completed,
      bonus_amount = EXCLUDED.bonus_amount,
      calculated_at = EXCLUDED.calculated_at
    WHERE bonus_calculations.status = 'calculado'
    RETURNING id
  `, c.CycleID, c.EmployeeID, c.EvaluationID, c.FinalScore, c.PerformanceBand,
		c.AppliedMultiplier, c.BaseSalary, c.Eligible, c.GoalsTotal, c.GoalsCompleted, c.Amount, c.CalculatedAt).Scan(&id)
	if db.IsNoRows(err) {
		return Calculation{}, ErrAlreadyPaid
	}
	if err != nil {
		return Calculation{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id string) (Calculation, error) {
	c, err := scanCalculation(s.DB.QueryRow(ctx, "SELECT "+calculationColumns+`
    FROM bonus_calculations b JOIN employees e ON e.id = b.employee_id
    WHERE b.id = $1`, id))
	if db.IsNoRows(err) {
		return Calculation{}, ErrNotFound
	}
	return c, err
}

func (s *Store) List(ctx context.Context, cycleID, status string) ([]Calculation, error) {
	query := "SELECT " + calculationColumns + " FROM bonus_calculations b JOIN employees e ON e.id = b.employee_id WHERE b.cycle_id = $1"
	args := []any{cycleID}
	if status != "" {
		args = append(args, status)
		query += " AND b.status = $2"
	}
	query += " ORDER BY e.name"
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Calculation{}
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) MarkPaid(ctx context.Context, id string, at time.Time) (Calculation, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE bonus_calculations SET status = 'pago', paid_at = $2
    WHERE id = $1 AND status = 'calculado'
  `, id, at)
	if err != nil {
		return Calculation{}, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Calculation{}, err
	}
	if tag.RowsAffected() == 0 {
		return Calculation{}, ErrAlreadyPaid
	}
	return c, nil
}
