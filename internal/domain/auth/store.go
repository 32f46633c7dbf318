package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"avd/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	var employeeID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, employee_id::text, active, last_login, password_hash
    FROM users
    WHERE lower(email) = lower($1) AND active = true
  `, email).Scan(&out.ID, &out.Email, &out.Role, &employeeID, &out.Active, &out.LastLogin, &out.PasswordHash)
	if db.IsNoRows(err) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if employeeID != nil {
		out.EmployeeID = *employeeID
	}
	return out, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, role, employeeID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, employee_id)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, email, passwordHash, role, db.NullIfEmpty(employeeID)).Scan(&id)
	if db.IsUniqueViolation(err, "users_email_unique") {
		return "", ErrEmailTaken
	}
	return id, err
}
