package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"avd/internal/platform/config"
)

// PasswordHasher hashes the seeded admin password. It is passed in so this
// package stays below the auth domain.
type PasswordHasher func(password string) (string, error)

type seedCompetency struct {
	name        string
	description string
	category    string
}

var defaultCompetencies = []seedCompetency{
	{"Comunicação", "Transmite informações com clareza e escuta ativamente.", "comportamental"},
	{"Trabalho em equipe", "Colabora com colegas e áreas para atingir objetivos comuns.", "comportamental"},
	{"Orientação a resultados", "Entrega metas com qualidade e dentro do prazo.", "comportamental"},
	{"Conhecimento técnico", "Domina as ferramentas e processos da função.", "tecnica"},
	{"Liderança", "Desenvolve pessoas e conduz a equipe com exemplo.", "lideranca"},
}

// Seed creates the admin user and the base competency catalog. Both steps
// are idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, hash PasswordHasher) error {
	if err := ensureCompetencies(ctx, pool); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, hash, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureCompetencies(ctx context.Context, pool *pgxpool.Pool) error {
	for _, c := range defaultCompetencies {
		_, err := pool.Exec(ctx, `
      INSERT INTO competencies (name, description, category)
      VALUES ($1, $2, $3)
      ON CONFLICT ON CONSTRAINT competencies_name_unique DO NOTHING
    `, c.name, c.description, c.category)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, hash PasswordHasher, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !IsNoRows(err) {
		return err
	}

	passwordHash, err := hash(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, 'admin')
    ON CONFLICT ON CONSTRAINT users_email_unique DO NOTHING
  `, email, passwordHash)
	return err
}
