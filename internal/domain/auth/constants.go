package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "rh"
	RoleManager  = "gestor"
	RoleEmployee = "colaborador"
)

var Roles = []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}
