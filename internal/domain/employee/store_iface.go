package employee

import "context"

type StoreAPI interface {
	Create(ctx context.Context, in CreateInput) (string, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter Filter) ([]Employee, error)
	Update(ctx context.Context, id string, emp Employee) error
	ManagerChain(ctx context.Context, id string) ([]string, error)
}
