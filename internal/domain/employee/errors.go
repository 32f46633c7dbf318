package employee

import "avd/internal/domain/errs"

var (
	ErrNotFound        = errs.NotFound("employee_not_found", "colaborador não encontrado")
	ErrManagerNotFound = errs.Validation("manager_not_found", "gestor não encontrado")
	ErrManagerCycle    = errs.Validation("manager_cycle", "hierarquia inválida: o colaborador não pode ser gestor de si mesmo")
	ErrEmailTaken      = errs.Conflict("employee_email_taken", "e-mail já cadastrado")
	ErrInvalidSalary   = errs.Validation("invalid_salary", "salário base não pode ser negativo")
)
