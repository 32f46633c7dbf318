package evaluation_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/evaluation"
	"avd/internal/platform/config"
	"avd/internal/platform/db"
)

func insertID(t *testing.T, pool *pgxpool.Pool, query string, args ...any) string {
	t.Helper()
	var id string
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&id))
	return id
}

func TestRejectionLetsManagerRateAgainAgainstPostgres(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool, nil))

	suffix := uuid.NewString()
	managerID := insertID(t, pool, `INSERT INTO employees (name, email) VALUES ($1, $2) RETURNING id`,
		"Marta Lima", "marta+"+suffix+"@uisa.com.br")
	employeeID := insertID(t, pool, `INSERT INTO employees (name, email, manager_id) VALUES ($1, $2, $3) RETURNING id`,
		"Rui Alves", "rui+"+suffix+"@uisa.com.br", managerID)
	competencyID := insertID(t, pool, `INSERT INTO competencies (name) VALUES ($1) RETURNING id`, "Negociação "+suffix)
	cycleID := insertID(t, pool, `INSERT INTO evaluation_cycles (name, start_date, end_date, status) VALUES ($1, $2, $3, 'ativo') RETURNING id`,
		"Ciclo "+suffix, "2026-01-01", "2026-12-31")

	store := evaluation.NewStore(pool)
	ev, created, err := store.Enroll(ctx, cycleID, employeeID, managerID)
	require.NoError(t, err)
	require.True(t, created)

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rating := func(rater, role string, score float64) []evaluation.Rating {
		return []evaluation.Rating{{CompetencyID: competencyID, RaterID: rater, RaterRole: role, Score: score}}
	}
	selfScore, managerScore := 50.0, 85.0
	_, err = store.ApplySubmission(ctx, evaluation.Submission{
		EvaluationID: ev.ID, Expected: evaluation.StatusPending, Next: evaluation.StatusSelfDone,
		Ratings: rating(employeeID, evaluation.RoleSelf, 2.5), At: at,
	})
	require.NoError(t, err)
	managerSub := evaluation.Submission{
		EvaluationID: ev.ID, Expected: evaluation.StatusSelfDone, Next: evaluation.StatusPendingConsensus,
		Ratings: rating(managerID, evaluation.RoleManager, 4.25), ManagerSubmitted: true,
		SelfScore: &selfScore, ManagerScore: &managerScore, At: at,
	}
	ev, err = store.ApplySubmission(ctx, managerSub)
	require.NoError(t, err)
	require.Equal(t, evaluation.StatusPendingConsensus, ev.Status)

	ev, err = store.ApplyRejection(ctx, ev.ID, managerID, "rever evidências", at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusSelfDone, ev.Status)
	assert.Nil(t, ev.ManagerScore)
	assert.Nil(t, ev.PendingConsensusAt)
	assert.Equal(t, "rever evidências", ev.RejectionReason)
	assert.Equal(t, managerID, ev.RejectedBy)
	require.NotNil(t, ev.RejectedAt)

	_, err = store.ApplyRejection(ctx, ev.ID, managerID, "de novo", at)
	assert.ErrorIs(t, err, evaluation.ErrConcurrentUpdate)

	ratings, err := store.ListRatings(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, evaluation.RoleSelf, ratings[0].RaterRole)

	ev, err = store.ApplySubmission(ctx, managerSub)
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusPendingConsensus, ev.Status)

	managerSub.Expected = evaluation.StatusPendingConsensus
	_, err = store.ApplySubmission(ctx, managerSub)
	assert.ErrorIs(t, err, evaluation.ErrDuplicateRating)

	var history int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM competency_ratings WHERE evaluation_id = $1 AND superseded_at IS NOT NULL`, ev.ID,
	).Scan(&history))
	assert.Equal(t, 1, history)
}
