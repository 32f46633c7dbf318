package employee

import "time"

type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	ManagerID  string    `json:"managerId,omitempty"`
	BaseSalary float64   `json:"baseSalary,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name       string  `json:"name" validate:"required,min=3"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	ManagerID  string  `json:"managerId" validate:"omitempty,uuid"`
	BaseSalary float64 `json:"baseSalary" validate:"gte=0"`
}

type UpdateInput struct {
	Name       *string  `json:"name" validate:"omitempty,min=3"`
	Department *string  `json:"department"`
	Position   *string  `json:"position"`
	ManagerID  *string  `json:"managerId" validate:"omitempty,uuid"`
	BaseSalary *float64 `json:"baseSalary" validate:"omitempty,gte=0"`
	Active     *bool    `json:"active"`
}

type Filter struct {
	ManagerID  string
	Department string
	ActiveOnly bool
}
