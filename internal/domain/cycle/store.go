package cycle

import (
	"context"

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

const cycleColumns = `id, name, COALESCE(description, ''), start_date, end_date, status, divergence_threshold::float8, created_at, updated_at`

func (s *Store) Create(ctx context.Context, in CreateInput) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_cycles (name, description, start_date, end_date, divergence_threshold)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, in.Name, db.NullIfEmpty(in.Description), in.StartDate, in.EndDate, in.DivergenceThreshold).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id string) (Cycle, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM evaluation_cycles WHERE id = $1", id)
	c, err := scanCycle(row)
	if db.IsNoRows(err) {
		return Cycle{}, ErrNotFound
	}
	return c, err
}

func (s *Store) List(ctx context.Context, status string) ([]Cycle, error) {
	query := "SELECT " + cycleColumns + " FROM evaluation_cycles"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY start_date DESC"
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Cycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) GetWeights(ctx context.Context, cycleID string) (*Weights, error) {
	var w Weights
	err := s.DB.QueryRow(ctx, `
    SELECT self_weight::float8, manager_weight::float8, peer_weight::float8, subordinate_weight::float8
    FROM cycle_weights WHERE cycle_id = $1
  `, cycleID).Scan(&w.Self, &w.Manager, &w.Peer, &w.Subordinate)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) UpsertWeights(ctx context.Context, cycleID string, w Weights) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO cycle_weights (cycle_id, self_weight, manager_weight, peer_weight, subordinate_weight)
    SELECT id, $2, $3, $4, $5 FROM evaluation_cycles WHERE id = $1 AND status = 'planejado'
    ON CONFLICT (cycle_id) DO UPDATE
    SET self_weight = EXCLUDED.self_weight,
        manager_weight = EXCLUDED.manager_weight,
        peer_weight = EXCLUDED.peer_weight,
        subordinate_weight = EXCLUDED.subordinate_weight,
        updated_at = now()
  `, cycleID, w.Self, w.Manager, w.Peer, w.Subordinate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ReplaceCompetencies(ctx context.Context, cycleID string, items []CompetencyWeight) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM evaluation_cycles WHERE id = $1 FOR UPDATE", cycleID).Scan(&status)
	if db.IsNoRows(err) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if status != StatusPlanned {
		return false, nil
	}

	if _, err := tx.Exec(ctx, "DELETE FROM cycle_competencies WHERE cycle_id = $1", cycleID); err != nil {
		return false, err
	}
	for _, item := range items {
		_, err := tx.Exec(ctx, `
      INSERT INTO cycle_competencies (cycle_id, competency_id, weight) VALUES ($1,$2,$3)
    `, cycleID, item.CompetencyID, item.Weight)
		if db.IsForeignKeyViolation(err) {
			return false, ErrCompetencyNotFound
		}
		if err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ListCycleCompetencies(ctx context.Context, cycleID string) ([]CycleCompetency, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT cc.competency_id, c.name, cc.weight::float8
    FROM cycle_competencies cc JOIN competencies c ON c.id = cc.competency_id
    WHERE cc.cycle_id = $1
    ORDER BY c.name
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CycleCompetency{}
	for rows.Next() {
		var cc CycleCompetency
		if err := rows.Scan(&cc.CompetencyID, &cc.Name, &cc.Weight); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (s *Store) CreateCompetency(ctx context.Context, in CompetencyInput) (string, error) {
	category := in.Category
	if category == "" {
		category = "comportamental"
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO competencies (name, description, category) VALUES ($1,$2,$3) RETURNING id
  `, in.Name, db.NullIfEmpty(in.Description), category).Scan(&id)
	if db.IsUniqueViolation(err, "competencies_name_unique") {
		return "", ErrCompetencyExists
	}
	return id, err
}

func (s *Store) ListCompetencies(ctx context.Context, activeOnly bool) ([]Competency, error) {
	query := "SELECT id, name, COALESCE(description, ''), category, active FROM competencies"
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name"
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Competency{}
	for rows.Next() {
		var c Competency
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Active); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Status, &c.DivergenceThreshold, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
