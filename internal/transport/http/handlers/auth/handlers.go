package authhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Register(ctx context.Context, email, password, role, employeeID string) (string, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required,oneof=admin rh gestor colaborador"`
	EmployeeID string `json:"employeeId" validate:"omitempty,uuid"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/users", h.handleRegister)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	perms := auth.RolePermissions[user.Role]
	if user.Role == auth.RoleAdmin {
		perms = []string{"*"}
	}
	api.Success(w, map[string]any{
		"userId":      user.UserID,
		"employeeId":  user.EmployeeID,
		"role":        user.Role,
		"permissions": perms,
	}, shared.RequestID(r))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	id, err := h.Service.Register(r.Context(), payload.Email, payload.Password, payload.Role, payload.EmployeeID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionUserCreate,
		EntityType: "user",
		EntityID:   id,
		After:      map[string]string{"email": payload.Email, "role": payload.Role, "employeeId": payload.EmployeeID},
	})
	api.Created(w, map[string]string{"id": id}, shared.RequestID(r))
}
