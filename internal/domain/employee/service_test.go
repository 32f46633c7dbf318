package employee

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows map[string]Employee
	seq  int
}

func newMemStore(emps ...Employee) *memStore {
	m := &memStore{rows: map[string]Employee{}}
	for _, e := range emps {
		m.rows[e.ID] = e
	}
	return m
}

func (m *memStore) Create(_ context.Context, in CreateInput) (string, error) {
	m.seq++
	id := fmt.Sprintf("new-%d", m.seq)
	m.rows[id] = Employee{ID: id, Name: in.Name, Email: in.Email, ManagerID: in.ManagerID, BaseSalary: in.BaseSalary, Active: true}
	return id, nil
}

func (m *memStore) Get(_ context.Context, id string) (Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]Employee, error) {
	var out []Employee
	for _, e := range m.rows {
		if f.ManagerID != "" && e.ManagerID != f.ManagerID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id string, e Employee) error {
	m.rows[id] = e
	return nil
}

func (m *memStore) ManagerChain(_ context.Context, id string) ([]string, error) {
	var chain []string
	cur := m.rows[id].ManagerID
	for cur != "" && len(chain) < 50 {
		chain = append(chain, cur)
		cur = m.rows[cur].ManagerID
	}
	return chain, nil
}

func TestCreateNormalizesAndChecksManager(t *testing.T) {
	svc := NewService(newMemStore(Employee{ID: "boss", Name: "Chefe"}))

	emp, err := svc.Create(context.Background(), CreateInput{Name: "  Ana Souza ", Email: " Ana@UISA.com.br", ManagerID: "boss", BaseSalary: 5000})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", emp.Name)
	assert.Equal(t, "ana@uisa.com.br", emp.Email)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Bruno", Email: "b@uisa.com.br", ManagerID: "ghost"})
	assert.ErrorIs(t, err, ErrManagerNotFound)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Bruno", Email: "b@uisa.com.br", BaseSalary: -1})
	assert.ErrorIs(t, err, ErrInvalidSalary)
}

func TestUpdateRejectsHierarchyCycle(t *testing.T) {
	store := newMemStore(
		Employee{ID: "ceo"},
		Employee{ID: "dir", ManagerID: "ceo"},
		Employee{ID: "ana", ManagerID: "dir"},
	)
	svc := NewService(store)

	ana := "ana"
	_, err := svc.Update(context.Background(), "ceo", UpdateInput{ManagerID: &ana})
	assert.ErrorIs(t, err, ErrManagerCycle)

	self := "dir"
	_, err = svc.Update(context.Background(), "dir", UpdateInput{ManagerID: &self})
	assert.ErrorIs(t, err, ErrManagerCycle)

	salary := 7200.0
	emp, err := svc.Update(context.Background(), "ana", UpdateInput{BaseSalary: &salary})
	require.NoError(t, err)
	assert.Equal(t, 7200.0, emp.BaseSalary)
}

func TestIsManagerOf(t *testing.T) {
	svc := NewService(newMemStore(
		Employee{ID: "ceo"},
		Employee{ID: "dir", ManagerID: "ceo"},
		Employee{ID: "ana", ManagerID: "dir"},
	))

	ok, err := svc.IsManagerOf(context.Background(), "ceo", "ana")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsManagerOf(context.Background(), "ana", "ceo")
	require.NoError(t, err)
	assert.False(t, ok)
}
