package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"avd/internal/platform/logger"
	"avd/internal/platform/metrics"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Func runs a job as of at. Scheduled runs pass the wall clock; manual runs
// may pass any date.
type Func func(ctx context.Context, at time.Time) (any, error)

// ItemCounter is implemented by batch summaries that report per-item
// outcomes.
type ItemCounter interface {
	Items() (succeeded, failed int)
}

type Run struct {
	ID          string          `json:"id"`
	Job         string          `json:"job"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type RunStore interface {
	StartRun(ctx context.Context, job string) (string, error)
	FinishRun(ctx context.Context, id, status string, details []byte) error
	ListRuns(ctx context.Context, job string, limit int) ([]Run, error)
}

// Runner executes jobs and records each run in job_runs.
type Runner struct {
	store   RunStore
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewRunner(store RunStore, m *metrics.Collector, log *zap.Logger) *Runner {
	return &Runner{store: store, metrics: m, log: logger.OrNop(log)}
}

func (r *Runner) Run(ctx context.Context, name string, at time.Time, fn Func) (any, error) {
	runID, err := r.store.StartRun(ctx, name)
	if err != nil {
		r.log.Warn("job run insert failed", zap.String("job", name), zap.Error(err))
	}

	started := time.Now()
	details, err := fn(ctx, at)
	elapsed := time.Since(started)

	status := statusCompleted
	if err != nil {
		status = statusFailed
	}
	var succeeded, failed int
	if counter, ok := details.(ItemCounter); ok {
		succeeded, failed = counter.Items()
	}
	r.metrics.RecordJob(name, succeeded, failed, elapsed, err)

	if runID != "" {
		payload := map[string]any{"at": at.Format(time.RFC3339), "result": details}
		if err != nil {
			payload["error"] = err.Error()
		}
		detailsJSON, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			r.log.Warn("job details marshal failed", zap.String("job", name), zap.Error(marshalErr))
			detailsJSON = []byte("{}")
		}
		// The job context may already be cancelled; the run row still has
		// to be closed.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if updErr := r.store.FinishRun(finishCtx, runID, status, detailsJSON); updErr != nil {
			r.log.Warn("job run update failed", zap.String("job", name), zap.Error(updErr))
		}
	}

	fields := []zap.Field{
		zap.String("job", name),
		zap.String("status", status),
		zap.Duration("elapsed", elapsed),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	}
	if err != nil {
		r.log.Error("job failed", append(fields, zap.Error(err))...)
	} else {
		r.log.Info("job completed", fields...)
	}
	return details, err
}

func (r *Runner) Runs(ctx context.Context, job string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.store.ListRuns(ctx, job, limit)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) StartRun(ctx context.Context, job string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, job, statusRunning).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, id, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}

func (s *Store) ListRuns(ctx context.Context, job string, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE $1 = '' OR job_type = $1
    ORDER BY started_at DESC
    LIMIT $2
  `, job, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run     Run
			details []byte
		)
		if err := rows.Scan(&run.ID, &run.Job, &run.Status, &details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.Details = details
		out = append(out, run)
	}
	return out, rows.Err()
}
