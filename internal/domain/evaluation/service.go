package evaluation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"avd/internal/domain/cycle"
	"avd/internal/domain/employee"
	"avd/internal/domain/notifications"
	"avd/internal/platform/cache"
	"avd/internal/platform/logger"
)

// Directory resolves employees and reporting lines.
type Directory interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
	IsManagerOf(ctx context.Context, managerID, employeeID string) (bool, error)
}

type Cycles interface {
	Config(ctx context.Context, cycleID string) (cycle.Config, error)
}

// Classifier maps a final score onto a performance band.
type Classifier interface {
	Classify(score float64) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, intent notifications.Intent) error
	NotifyEmail(ctx context.Context, intent notifications.Intent) error
}

type Options struct {
	Scale               Scale
	DivergenceThreshold float64
	ReminderDays        int
	EmailDelay          time.Duration
	BaseURL             string
}

type Deps struct {
	Store      StoreAPI
	Cycles     Cycles
	Directory  Directory
	Classifier Classifier
	Notifier   Notifier
	Cache      *cache.Loader
	Log        *zap.Logger
}

type Service struct {
	store      StoreAPI
	cycles     Cycles
	directory  Directory
	classifier Classifier
	notifier   Notifier
	cache      *cache.Loader
	opts       Options
	log        *zap.Logger
	now        func() time.Time
}

func NewService(deps Deps, opts Options) *Service {
	if opts.Scale.Max <= opts.Scale.Min {
		opts.Scale = DefaultScale()
	}
	if opts.ReminderDays <= 0 {
		opts.ReminderDays = 3
	}
	return &Service{
		store:      deps.Store,
		cycles:     deps.Cycles,
		directory:  deps.Directory,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		cache:      deps.Cache,
		opts:       opts,
		log:        logger.OrNop(deps.Log),
		now:        time.Now,
	}
}

func SummaryCacheKey(cycleID string) string {
	return "evaluation:summary:" + cycleID
}

// Enroll creates one pending evaluation per employee. Employees already
// enrolled in the cycle are returned as they are.
func (s *Service) Enroll(ctx context.Context, cycleID string, employeeIDs []string) (EnrollResult, error) {
	cfg, err := s.cycles.Config(ctx, cycleID)
	if err != nil {
		return EnrollResult{}, err
	}
	if cfg.Cycle.Status == cycle.StatusClosed {
		return EnrollResult{}, ErrCycleClosed
	}
	result := EnrollResult{Created: []Evaluation{}, Existing: []Evaluation{}}
	seen := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		emp, err := s.directory.Get(ctx, id)
		if err != nil {
			return result, err
		}
		ev, created, err := s.store.Enroll(ctx, cycleID, emp.ID, emp.ManagerID)
		if err != nil {
			return result, err
		}
		if created {
			result.Created = append(result.Created, ev)
		} else {
			result.Existing = append(result.Existing, ev)
		}
	}
	if len(result.Created) > 0 {
		s.cache.Invalidate(ctx, SummaryCacheKey(cycleID))
	}
	return result, nil
}

// SubmitRatings appends one rater's scores and advances the workflow. A
// manager submission resolves straight into pending_consensus or
// finalized.
func (s *Service) SubmitRatings(ctx context.Context, in SubmitInput) (Detail, error) {
	if !ValidRole(in.Role) {
		return Detail{}, ErrInvalidRole
	}
	if len(in.Ratings) == 0 {
		return Detail{}, ErrNoRatings
	}
	ev, err := s.store.Get(ctx, in.EvaluationID)
	if err != nil {
		return Detail{}, err
	}
	next, err := NextStatus(ev.Status, in.Role)
	if err != nil {
		return Detail{}, err
	}
	cfg, err := s.cycles.Config(ctx, ev.CycleID)
	if err != nil {
		return Detail{}, err
	}
	if cfg.Cycle.Status != cycle.StatusActive {
		return Detail{}, ErrCycleNotActive
	}
	if cfg.Weights == nil {
		return Detail{}, ErrNoWeights
	}
	if err := s.authorizeRater(ctx, ev, in.RaterID, in.Role); err != nil {
		return Detail{}, err
	}

	now := s.now()
	ratings, err := s.buildRatings(ev.ID, in, cfg, now)
	if err != nil {
		return Detail{}, err
	}

	sub := Submission{EvaluationID: ev.ID, Expected: ev.Status, Next: next, Ratings: ratings, At: now}
	if in.Role == RoleManager {
		if err := s.resolve(ctx, &sub, cfg); err != nil {
			return Detail{}, err
		}
	}

	updated, err := s.store.ApplySubmission(ctx, sub)
	if err != nil {
		return Detail{}, err
	}
	s.cache.Invalidate(ctx, SummaryCacheKey(updated.CycleID))
	s.log.Info("ratings submitted",
		zap.String("evaluationId", updated.ID),
		zap.String("role", in.Role),
		zap.Int("ratings", len(ratings)),
		zap.String("from", ev.Status),
		zap.String("to", updated.Status))

	if updated.Status != ev.Status {
		s.notifyTransition(ctx, updated)
	}
	return s.detail(ctx, updated, cfg)
}

func (s *Service) buildRatings(evaluationID string, in SubmitInput, cfg cycle.Config, now time.Time) ([]Rating, error) {
	allowed := make(map[string]struct{}, len(cfg.Competencies))
	for _, cc := range cfg.Competencies {
		allowed[cc.CompetencyID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(in.Ratings))
	out := make([]Rating, 0, len(in.Ratings))
	for _, item := range in.Ratings {
		if _, ok := allowed[item.CompetencyID]; !ok {
			return nil, ErrUnknownCompetency.Withf("%s", item.CompetencyID)
		}
		if _, dup := seen[item.CompetencyID]; dup {
			return nil, ErrRepeatedCompetency
		}
		seen[item.CompetencyID] = struct{}{}
		if err := s.opts.Scale.Check(item.Score); err != nil {
			return nil, err
		}
		out = append(out, Rating{
			EvaluationID: evaluationID,
			CompetencyID: item.CompetencyID,
			RaterID:      in.RaterID,
			RaterRole:    in.Role,
			Score:        item.Score,
			Comment:      strings.TrimSpace(item.Comment),
			CreatedAt:    now,
		})
	}
	return out, nil
}

// resolve computes self and manager scores over all ratings including the
// pending batch and picks the post-manager status.
func (s *Service) resolve(ctx context.Context, sub *Submission, cfg cycle.Config) error {
	existing, err := s.store.ListRatings(ctx, sub.EvaluationID)
	if err != nil {
		return err
	}
	all := append(existing, sub.Ratings...)
	breakdown, err := Breakdown(all, cfg, s.opts.Scale)
	if err != nil {
		return err
	}
	sub.ManagerSubmitted = true

	selfScore, okSelf := RoleOverall(breakdown, RoleSelf)
	managerScore, okManager := RoleOverall(breakdown, RoleManager)
	if !okSelf || !okManager {
		return ErrNotComparable
	}
	selfScore, managerScore = round2(selfScore), round2(managerScore)
	sub.SelfScore, sub.ManagerScore = &selfScore, &managerScore

	threshold := cfg.Cycle.EffectiveThreshold(s.opts.DivergenceThreshold)
	sub.Next = Resolve(selfScore, managerScore, threshold)
	if sub.Next != StatusFinalized {
		return nil
	}
	final, ok := ComposeOverall(breakdown)
	if !ok {
		return ErrNotComparable
	}
	final = round2(final)
	band, err := s.classifier.Classify(final)
	if err != nil {
		return err
	}
	sub.FinalScore, sub.Band = &final, band
	return nil
}

func (s *Service) authorizeRater(ctx context.Context, ev Evaluation, raterID, role string) error {
	if raterID == "" {
		return ErrWrongRater
	}
	switch role {
	case RoleSelf:
		if raterID != ev.EmployeeID {
			return ErrWrongRater
		}
	case RoleManager:
		if ev.ManagerID != "" {
			if raterID != ev.ManagerID {
				return ErrWrongRater
			}
			return nil
		}
		ok, err := s.directory.IsManagerOf(ctx, raterID, ev.EmployeeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWrongRater
		}
	case RolePeer:
		if raterID == ev.EmployeeID || raterID == ev.ManagerID {
			return ErrWrongRater
		}
	case RoleSubordinate:
		ok, err := s.directory.IsManagerOf(ctx, ev.EmployeeID, raterID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWrongRater
		}
	}
	return nil
}

// SubmitConsensus records the reconciled score agreed between manager and
// employee.
func (s *Service) SubmitConsensus(ctx context.Context, in ConsensusInput, privileged bool) (Evaluation, error) {
	if in.Score < 0 || in.Score > 100 {
		return Evaluation{}, ErrConsensusScore
	}
	ev, err := s.store.Get(ctx, in.EvaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	switch ev.Status {
	case StatusFinalized:
		return Evaluation{}, ErrFinalized
	case StatusPendingConsensus:
	default:
		return Evaluation{}, ErrInvalidTransition.Withf("consenso exige status %s, atual %s", StatusPendingConsensus, ev.Status)
	}
	if !privileged {
		if err := s.authorizeRater(ctx, ev, in.ManagerID, RoleManager); err != nil {
			return Evaluation{}, ErrNotManager
		}
	}
	updated, err := s.store.ApplyConsensus(ctx, ev.ID, in.ManagerID, round2(in.Score), strings.TrimSpace(in.Notes), s.now())
	if err != nil {
		return Evaluation{}, err
	}
	s.cache.Invalidate(ctx, SummaryCacheKey(updated.CycleID))
	return updated, nil
}

// RejectConsensus sends an evaluation waiting for consensus back to the
// manager stage. The manager's ratings are superseded and the employee is
// told why.
func (s *Service) RejectConsensus(ctx context.Context, in RejectInput, privileged bool) (Evaluation, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return Evaluation{}, ErrRejectReason
	}
	ev, err := s.store.Get(ctx, in.EvaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	switch ev.Status {
	case StatusFinalized:
		return Evaluation{}, ErrFinalized
	case StatusPendingConsensus:
	default:
		return Evaluation{}, ErrInvalidTransition.Withf("rejeição exige status %s, atual %s", StatusPendingConsensus, ev.Status)
	}
	if !privileged {
		if err := s.authorizeRater(ctx, ev, in.ManagerID, RoleManager); err != nil {
			return Evaluation{}, ErrNotManager
		}
	}
	updated, err := s.store.ApplyRejection(ctx, ev.ID, in.ManagerID, reason, s.now())
	if err != nil {
		return Evaluation{}, err
	}
	s.cache.Invalidate(ctx, SummaryCacheKey(updated.CycleID))
	s.log.Info("consensus rejected",
		zap.String("evaluationId", updated.ID),
		zap.String("by", in.ManagerID),
		zap.String("to", updated.Status))

	if s.notifier != nil {
		name := updated.EmployeeID
		if emp, err := s.directory.Get(ctx, updated.EmployeeID); err == nil {
			name = emp.Name
		}
		intent := notifications.ConsensusRejected(updated.EmployeeID, name, reason, s.link(updated.ID))
		if err := s.notifier.Notify(ctx, intent); err != nil {
			s.log.Warn("evaluation notification failed",
				zap.String("evaluationId", updated.ID),
				zap.String("type", intent.Type),
				zap.Error(err))
		}
	}
	return updated, nil
}

// Finalize closes a reconciled evaluation using its consensus score.
func (s *Service) Finalize(ctx context.Context, id string) (Evaluation, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if ev.Status == StatusFinalized {
		return Evaluation{}, ErrFinalized
	}
	if !CanFinalize(ev.Status) || ev.ConsensusScore == nil {
		return Evaluation{}, ErrInvalidTransition.Withf("finalização exige status %s, atual %s", StatusConsensusDone, ev.Status)
	}
	score := *ev.ConsensusScore
	band, err := s.classifier.Classify(score)
	if err != nil {
		return Evaluation{}, err
	}
	updated, err := s.store.ApplyFinalize(ctx, id, score, band, s.now())
	if err != nil {
		return Evaluation{}, err
	}
	s.cache.Invalidate(ctx, SummaryCacheKey(updated.CycleID))
	s.notifyTransition(ctx, updated)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	cfg, err := s.cycles.Config(ctx, ev.CycleID)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, ev, cfg)
}

// Evaluation returns the bare row without the rating breakdown.
func (s *Service) Evaluation(ctx context.Context, id string) (Evaluation, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) detail(ctx context.Context, ev Evaluation, cfg cycle.Config) (Detail, error) {
	d := Detail{
		Evaluation:   ev,
		Competencies: []CompetencyScore{},
		Threshold:    cfg.Cycle.EffectiveThreshold(s.opts.DivergenceThreshold),
	}
	if ev.SelfScore != nil && ev.ManagerScore != nil {
		div := round2(Divergence(*ev.SelfScore, *ev.ManagerScore))
		d.Divergence = &div
	}
	if cfg.Weights == nil {
		return d, nil
	}
	ratings, err := s.store.ListRatings(ctx, ev.ID)
	if err != nil {
		return Detail{}, err
	}
	breakdown, err := Breakdown(ratings, cfg, s.opts.Scale)
	if err != nil {
		return Detail{}, err
	}
	d.Competencies = breakdown
	if composed, ok := ComposeOverall(breakdown); ok {
		composed = round2(composed)
		d.ComposedScore = &composed
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, errInvalidStatusFilter
	}
	return s.store.List(ctx, filter, limit, offset)
}

// CycleSummary counts evaluations per status and band. Results are cached
// and dropped whenever an evaluation of the cycle changes.
func (s *Service) CycleSummary(ctx context.Context, cycleID string) (Summary, error) {
	return cache.FindAndCache(ctx, s.cache, SummaryCacheKey(cycleID), func(ctx context.Context) (Summary, error) {
		rows, err := s.store.SummaryRows(ctx, cycleID)
		if err != nil {
			return Summary{}, err
		}
		return foldSummary(cycleID, rows), nil
	})
}

func foldSummary(cycleID string, rows []SummaryRow) Summary {
	out := Summary{CycleID: cycleID, ByStatus: map[string]int{}, ByBand: map[string]int{}}
	var sum float64
	var scored int
	for _, r := range rows {
		out.Total += r.Count
		out.ByStatus[r.Status] += r.Count
		if r.Status == StatusFinalized && r.Band != "" {
			out.ByBand[r.Band] += r.Count
		}
		sum += r.ScoreSum
		scored += r.Scored
	}
	if scored > 0 {
		avg := round2(sum / float64(scored))
		out.AverageFinalScore = &avg
	}
	return out
}

// RemindPendingConsensus re-notifies managers of evaluations waiting for
// consensus longer than the configured number of days. Each reminder is
// isolated; the workflow status is never touched.
func (s *Service) RemindPendingConsensus(ctx context.Context, now time.Time) (BatchSummary, error) {
	pendingBefore := now.AddDate(0, 0, -s.opts.ReminderDays)
	remindedBefore := now.Add(-24 * time.Hour)
	candidates, err := s.store.PendingConsensus(ctx, pendingBefore, remindedBefore)
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	for i, c := range candidates {
		if i > 0 && s.opts.EmailDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.opts.EmailDelay):
			}
		}
		summary.Processed++
		if err := s.remind(ctx, c, now); err != nil {
			summary.Failed++
			s.log.Warn("consensus reminder failed",
				zap.String("evaluationId", c.EvaluationID),
				zap.String("employeeId", c.EmployeeID),
				zap.Error(err))
			continue
		}
		summary.Succeeded++
	}
	s.log.Info("consensus reminders sent",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *Service) remind(ctx context.Context, c ReminderCandidate, now time.Time) error {
	if c.ManagerID == "" {
		return errNoManager
	}
	days := int(now.Sub(c.PendingSince).Hours() / 24)
	intent := notifications.ConsensusReminder(c.ManagerID, c.EmployeeName, days, s.link(c.EvaluationID))
	if err := s.notifier.NotifyEmail(ctx, intent); err != nil {
		return err
	}
	if err := s.store.MarkReminded(ctx, c.EvaluationID, now); err != nil {
		s.log.Warn("consensus reminder not recorded", zap.String("evaluationId", c.EvaluationID), zap.Error(err))
	}
	return nil
}

func (s *Service) notifyTransition(ctx context.Context, ev Evaluation) {
	if s.notifier == nil {
		return
	}
	var intent notifications.Intent
	switch ev.Status {
	case StatusPendingConsensus:
		if ev.ManagerID == "" || ev.SelfScore == nil || ev.ManagerScore == nil {
			return
		}
		name := ev.EmployeeID
		if emp, err := s.directory.Get(ctx, ev.EmployeeID); err == nil {
			name = emp.Name
		}
		intent = notifications.ConsensusRequired(ev.ManagerID, name, *ev.SelfScore, *ev.ManagerScore, s.link(ev.ID))
	case StatusFinalized:
		if ev.FinalScore == nil {
			return
		}
		intent = notifications.EvaluationFinalized(ev.EmployeeID, *ev.FinalScore, ev.PerformanceBand, s.link(ev.ID))
	default:
		return
	}
	if err := s.notifier.Notify(ctx, intent); err != nil {
		s.log.Warn("evaluation notification failed",
			zap.String("evaluationId", ev.ID),
			zap.String("type", intent.Type),
			zap.Error(err))
	}
}

func (s *Service) link(evaluationID string) string {
	return strings.TrimRight(s.opts.BaseURL, "/") + "/avaliacoes/" + evaluationID
}

var errNoManager = errors.New("evaluation has no manager to remind")
