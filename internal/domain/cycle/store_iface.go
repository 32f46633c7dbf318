package cycle

import "context"

type StoreAPI interface {
	Create(ctx context.Context, in CreateInput) (string, error)
	Get(ctx context.Context, id string) (Cycle, error)
	List(ctx context.Context, status string) ([]Cycle, error)
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	GetWeights(ctx context.Context, cycleID string) (*Weights, error)
	// UpsertWeights writes only while the cycle is planned; false means the
	// cycle had already left that status.
	UpsertWeights(ctx context.Context, cycleID string, w Weights) (bool, error)
	ReplaceCompetencies(ctx context.Context, cycleID string, items []CompetencyWeight) (bool, error)
	ListCycleCompetencies(ctx context.Context, cycleID string) ([]CycleCompetency, error)
	CreateCompetency(ctx context.Context, in CompetencyInput) (string, error)
	ListCompetencies(ctx context.Context, activeOnly bool) ([]Competency, error)
}
