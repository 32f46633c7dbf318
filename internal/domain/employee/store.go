package employee

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avd/internal/platform/crypto"
	"avd/internal/platform/db"
)

type Store struct {
	DB     *pgxpool.Pool
	cipher *crypto.Cipher
}

func NewStore(pool *pgxpool.Pool, cipher *crypto.Cipher) *Store {
	return &Store{DB: pool, cipher: cipher}
}

const employeeColumns = `id, name, email, COALESCE(department, ''), COALESCE(position, ''),
  COALESCE(manager_id::text, ''), base_salary_enc, active, created_at, updated_at`

func (s *Store) Create(ctx context.Context, in CreateInput) (string, error) {
	salary, err := s.cipher.SealAmount(in.BaseSalary)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (name, email, department, position, manager_id, base_salary_enc)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, in.Name, in.Email, db.NullIfEmpty(in.Department), db.NullIfEmpty(in.Position), db.NullIfEmpty(in.ManagerID), salary).Scan(&id)
	if db.IsUniqueViolation(err, "employees_email_unique") {
		return "", ErrEmailTaken
	}
	return id, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id)
	emp, err := s.scan(row)
	if db.IsNoRows(err) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Employee, error) {
	query := "SELECT " + employeeColumns + " FROM employees WHERE 1=1"
	var args []any
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		query += fmt.Sprintf(" AND manager_id = $%d", len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND active = true"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, emp Employee) error {
	salary, err := s.cipher.SealAmount(emp.BaseSalary)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, department = $2, position = $3, manager_id = $4, base_salary_enc = $5, active = $6, updated_at = now()
    WHERE id = $7
  `, emp.Name, db.NullIfEmpty(emp.Department), db.NullIfEmpty(emp.Position), db.NullIfEmpty(emp.ManagerID), salary, emp.Active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ManagerChain walks manager_id upwards starting at id's manager.
func (s *Store) ManagerChain(ctx context.Context, id string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    WITH RECURSIVE chain(id, manager_id, depth) AS (
      SELECT id, manager_id, 0 FROM employees WHERE id = $1
      UNION ALL
      SELECT e.id, e.manager_id, c.depth + 1
      FROM employees e JOIN chain c ON e.id = c.manager_id
      WHERE c.depth < 50
    )
    SELECT id::text FROM chain WHERE depth > 0 ORDER BY depth
  `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var managerID string
		if err := rows.Scan(&managerID); err != nil {
			return nil, err
		}
		out = append(out, managerID)
	}
	return out, rows.Err()
}

func (s *Store) scan(row pgx.Row) (Employee, error) {
	var emp Employee
	var salary []byte
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Department, &emp.Position, &emp.ManagerID, &salary, &emp.Active, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
		return Employee{}, err
	}
	amount, err := s.cipher.OpenAmount(salary)
	if err != nil {
		return Employee{}, fmt.Errorf("decrypt salary for %s: %w", emp.ID, err)
	}
	emp.BaseSalary = amount
	return emp, nil
}
