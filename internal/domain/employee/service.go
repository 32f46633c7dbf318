package employee

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.BaseSalary < 0 {
		return Employee{}, ErrInvalidSalary
	}
	if in.ManagerID != "" {
		if _, err := s.store.Get(ctx, in.ManagerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Employee{}, ErrManagerNotFound
			}
			return Employee{}, err
		}
	}
	id, err := s.store.Create(ctx, in)
	if err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Employee, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) Subordinates(ctx context.Context, managerID string) ([]Employee, error) {
	return s.store.List(ctx, Filter{ManagerID: managerID, ActiveOnly: true})
}

// IsManagerOf reports whether managerID sits anywhere above employeeID.
func (s *Service) IsManagerOf(ctx context.Context, managerID, employeeID string) (bool, error) {
	chain, err := s.store.ManagerChain(ctx, employeeID)
	if err != nil {
		return false, err
	}
	for _, id := range chain {
		if id == managerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Employee, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Department != nil {
		current.Department = *in.Department
	}
	if in.Position != nil {
		current.Position = *in.Position
	}
	if in.BaseSalary != nil {
		if *in.BaseSalary < 0 {
			return Employee{}, ErrInvalidSalary
		}
		current.BaseSalary = *in.BaseSalary
	}
	if in.Active != nil {
		current.Active = *in.Active
	}
	if in.ManagerID != nil && *in.ManagerID != current.ManagerID {
		if err := s.checkManager(ctx, id, *in.ManagerID); err != nil {
			return Employee{}, err
		}
		current.ManagerID = *in.ManagerID
	}
	if err := s.store.Update(ctx, id, current); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) checkManager(ctx context.Context, employeeID, managerID string) error {
	if managerID == "" {
		return nil
	}
	if managerID == employeeID {
		return ErrManagerCycle
	}
	if _, err := s.store.Get(ctx, managerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrManagerNotFound
		}
		return err
	}
	chain, err := s.store.ManagerChain(ctx, managerID)
	if err != nil {
		return err
	}
	for _, id := range chain {
		if id == employeeID {
			return ErrManagerCycle
		}
	}
	return nil
}
