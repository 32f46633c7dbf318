package cycle

import (
	"context"
	"strings"

	"avd/internal/platform/cache"
)

type Service struct {
	store StoreAPI
	cache *cache.Loader
}

// NewService wires the cycle store. loader may be nil, in which case Config
// always reads through to the store.
func NewService(store StoreAPI, loader *cache.Loader) *Service {
	return &Service{store: store, cache: loader}
}

func ConfigCacheKey(cycleID string) string {
	return "cycle:config:" + cycleID
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Cycle, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Cycle{}, ErrInvalidName
	}
	if err := ValidateDates(in.StartDate, in.EndDate); err != nil {
		return Cycle{}, err
	}
	if err := ValidateThreshold(in.DivergenceThreshold); err != nil {
		return Cycle{}, err
	}
	id, err := s.store.Create(ctx, in)
	if err != nil {
		return Cycle{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Cycle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status string) ([]Cycle, error) {
	return s.store.List(ctx, status)
}

// SetWeights replaces the rater-role weights. Weights are frozen once the
// cycle is active.
func (s *Service) SetWeights(ctx context.Context, cycleID string, w Weights) (Weights, error) {
	if err := ValidateWeights(w); err != nil {
		return Weights{}, err
	}
	if _, err := s.store.Get(ctx, cycleID); err != nil {
		return Weights{}, err
	}
	ok, err := s.store.UpsertWeights(ctx, cycleID, w)
	if err != nil {
		return Weights{}, err
	}
	if !ok {
		return Weights{}, ErrConfigLocked
	}
	s.cache.Invalidate(ctx, ConfigCacheKey(cycleID))
	return w, nil
}

func (s *Service) SetCompetencies(ctx context.Context, cycleID string, items []CompetencyWeight) ([]CycleCompetency, error) {
	for i := range items {
		items[i].CompetencyID = strings.TrimSpace(items[i].CompetencyID)
	}
	if err := ValidateCompetencyWeights(items); err != nil {
		return nil, err
	}
	ok, err := s.store.ReplaceCompetencies(ctx, cycleID, items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConfigLocked
	}
	s.cache.Invalidate(ctx, ConfigCacheKey(cycleID))
	return s.store.ListCycleCompetencies(ctx, cycleID)
}

// Activate opens a planned cycle for ratings. It requires weights and at
// least one competency.
func (s *Service) Activate(ctx context.Context, cycleID string) (Cycle, error) {
	cfg, err := s.loadConfig(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if cfg.Cycle.Status != StatusPlanned {
		return Cycle{}, ErrInvalidTransition
	}
	if cfg.Weights == nil || len(cfg.Competencies) == 0 {
		return Cycle{}, ErrNotConfigured
	}
	return s.transition(ctx, cycleID, StatusPlanned, StatusActive)
}

func (s *Service) Complete(ctx context.Context, cycleID string) (Cycle, error) {
	return s.transition(ctx, cycleID, StatusActive, StatusClosed)
}

func (s *Service) transition(ctx context.Context, cycleID, from, to string) (Cycle, error) {
	ok, err := s.store.UpdateStatus(ctx, cycleID, from, to)
	if err != nil {
		return Cycle{}, err
	}
	if !ok {
		if _, err := s.store.Get(ctx, cycleID); err != nil {
			return Cycle{}, err
		}
		return Cycle{}, ErrInvalidTransition
	}
	s.cache.Invalidate(ctx, ConfigCacheKey(cycleID))
	return s.store.Get(ctx, cycleID)
}

// Config returns the cycle with its weights and competencies, served from
// cache when available.
func (s *Service) Config(ctx context.Context, cycleID string) (Config, error) {
	return cache.FindAndCache(ctx, s.cache, ConfigCacheKey(cycleID), func(ctx context.Context) (Config, error) {
		return s.loadConfig(ctx, cycleID)
	})
}

func (s *Service) loadConfig(ctx context.Context, cycleID string) (Config, error) {
	c, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return Config{}, err
	}
	weights, err := s.store.GetWeights(ctx, cycleID)
	if err != nil {
		return Config{}, err
	}
	comps, err := s.store.ListCycleCompetencies(ctx, cycleID)
	if err != nil {
		return Config{}, err
	}
	return Config{Cycle: c, Weights: weights, Competencies: comps}, nil
}

func (s *Service) CreateCompetency(ctx context.Context, in CompetencyInput) (Competency, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Competency{}, errInvalidCompetencyName
	}
	id, err := s.store.CreateCompetency(ctx, in)
	if err != nil {
		return Competency{}, err
	}
	category := in.Category
	if category == "" {
		category = "comportamental"
	}
	return Competency{ID: id, Name: in.Name, Description: in.Description, Category: category, Active: true}, nil
}

func (s *Service) ListCompetencies(ctx context.Context, activeOnly bool) ([]Competency, error) {
	return s.store.ListCompetencies(ctx, activeOnly)
}
