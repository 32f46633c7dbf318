package notificationshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"avd/internal/domain/notifications"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, employeeID string, limit, offset int) ([]notifications.Notification, error)
	CountUnread(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID, notificationID string) error
}

type Handler struct {
	Service Service
	Log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: service, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	if user.EmployeeID == "" {
		w.Header().Set("X-Unread-Count", "0")
		api.Success(w, []notifications.Notification{}, shared.RequestID(r))
		return
	}

	page := shared.ParsePagination(r, 100, shared.MaxLimit)
	unread, err := h.Service.CountUnread(r.Context(), user.EmployeeID)
	if err != nil {
		h.Log.Warn("notification count failed", zap.String("employeeId", user.EmployeeID), zap.Error(err))
	}
	items, err := h.Service.List(r.Context(), user.EmployeeID, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	w.Header().Set("X-Unread-Count", strconv.Itoa(unread))
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(r.Context(), user.EmployeeID, chi.URLParam(r, "notificationID")); err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, map[string]string{"status": "read"}, shared.RequestID(r))
}
