package auth

const (
	PermEmployeesRead     = "employees.read"
	PermEmployeesWrite    = "employees.write"
	PermCyclesRead        = "cycles.read"
	PermCyclesManage      = "cycles.manage"
	PermEvaluationsRead   = "evaluations.read"
	PermEvaluationsRate   = "evaluations.rate"
	PermEvaluationsReview = "evaluations.consensus"
	PermGoalsRead         = "goals.read"
	PermGoalsWrite        = "goals.write"
	PermBonusRead         = "bonus.read"
	PermBonusManage       = "bonus.manage"
	PermTimeclockRead     = "timeclock.read"
	PermTimeclockWrite    = "timeclock.write"
	PermTimeclockReview   = "timeclock.review"
	PermAuditRead         = "audit.read"
	PermJobsRun           = "jobs.run"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermCyclesRead,
		PermEvaluationsRead,
		PermEvaluationsRate,
		PermGoalsRead,
		PermGoalsWrite,
		PermBonusRead,
		PermTimeclockRead,
		PermTimeclockWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermCyclesRead,
		PermEvaluationsRead,
		PermEvaluationsRate,
		PermEvaluationsReview,
		PermGoalsRead,
		PermGoalsWrite,
		PermBonusRead,
		PermTimeclockRead,
		PermTimeclockWrite,
		PermTimeclockReview,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCyclesRead,
		PermCyclesManage,
		PermEvaluationsRead,
		PermEvaluationsRate,
		PermEvaluationsReview,
		PermGoalsRead,
		PermGoalsWrite,
		PermBonusRead,
		PermBonusManage,
		PermTimeclockRead,
		PermTimeclockWrite,
		PermTimeclockReview,
		PermAuditRead,
		PermJobsRun,
	},
}

// Allowed reports whether role grants permission. Admin holds every
// permission.
func Allowed(role, permission string) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether role sees data across the whole company.
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleHR
}
