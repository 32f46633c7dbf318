package auth

import "avd/internal/domain/errs"

var (
	ErrInvalidCredentials = errs.Unauthorized("invalid_credentials", "e-mail ou senha inválidos")
	ErrInvalidRole        = errs.Validation("invalid_role", "perfil inválido")
	ErrEmailTaken         = errs.Conflict("email_taken", "e-mail já cadastrado")
)
