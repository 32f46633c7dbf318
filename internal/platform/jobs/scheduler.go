package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"avd/internal/domain/errs"
	"avd/internal/platform/logger"
)

var (
	ErrUnknownJob   = errs.NotFound("job_not_found", "job não encontrado")
	ErrDuplicateJob = errs.Conflict("job_registered", "job já registrado")
	ErrInvalidSpec  = errs.Validation("invalid_cron_spec", "expressão cron inválida")
)

type job struct {
	name string
	spec string
	fn   Func
}

type JobInfo struct {
	Name string     `json:"name"`
	Spec string     `json:"schedule"`
	Next *time.Time `json:"nextRun,omitempty"`
}

// Scheduler owns the process cron. One instance is built at startup and
// stopped on shutdown; overlapping runs of the same job are skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	log    *zap.Logger

	mu      sync.Mutex
	jobs    map[string]job
	entries map[string]cron.EntryID
	ctx     context.Context
}

func NewScheduler(runner *Runner, loc *time.Location, log *zap.Logger) *Scheduler {
	log = logger.OrNop(log)
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:  runner,
		log:     log,
		jobs:    map[string]job{},
		entries: map[string]cron.EntryID{},
		ctx:     context.Background(),
	}
}

// Register adds a job under a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, fn Func) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return ErrDuplicateJob.Withf("%s", name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		_, _ = s.runner.Run(ctx, name, time.Now(), fn)
	})
	if err != nil {
		return ErrInvalidSpec.Withf("%s: %v", name, err)
	}
	s.jobs[name] = job{name: name, spec: spec, fn: fn}
	s.entries[name] = id
	return nil
}

// Start begins firing scheduled jobs with ctx as their parent context.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("scheduler started", zap.Strings("jobs", s.Names()))
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// RunNow runs a registered job immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string, at time.Time) (any, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnknownJob.Withf("%s", name)
	}
	return s.runner.Run(ctx, j.name, at, j.fn)
}

func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for name, j := range s.jobs {
		info := JobInfo{Name: name, Spec: j.spec}
		if next := s.cron.Entry(s.entries[name]).Next; !next.IsZero() {
			info.Next = &next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
