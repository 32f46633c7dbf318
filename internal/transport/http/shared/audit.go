package shared

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"avd/internal/domain/audit"
	"avd/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Audit records entry with the caller, request id and client address of r.
// Failures are logged and never reach the client.
func Audit(r *http.Request, auditor Auditor, entry audit.Entry) {
	if auditor == nil {
		return
	}
	if user, ok := middleware.GetUser(r.Context()); ok && entry.ActorID == "" {
		entry.ActorID = user.UserID
	}
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = middleware.ClientIP(r)
	if err := auditor.Record(r.Context(), entry); err != nil {
		zap.L().Warn("audit record failed",
			zap.String("action", entry.Action),
			zap.String("entityId", entry.EntityID),
			zap.Error(err))
	}
}
