package shared

import (
	"net/http"

	"avd/internal/domain/auth"
	"avd/internal/transport/http/api"
)

// SelfOnly reports whether the caller may only see records of their own
// employee profile.
func SelfOnly(user auth.UserContext) bool {
	return user.Role == auth.RoleEmployee
}

// Forbid answers 403 with the standard envelope.
func Forbid(w http.ResponseWriter, r *http.Request, message string) {
	api.Fail(w, http.StatusForbidden, "forbidden", message, RequestID(r))
}
