package employeeshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/employee"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in employee.CreateInput) (employee.Employee, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	List(ctx context.Context, filter employee.Filter) ([]employee.Employee, error)
	Subordinates(ctx context.Context, managerID string) ([]employee.Employee, error)
	Update(ctx context.Context, id string, in employee.UpdateInput) (employee.Employee, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Patch("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}/subordinates", h.handleSubordinates)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := employee.Filter{
		ManagerID:  q.Get("managerId"),
		Department: q.Get("department"),
		ActiveOnly: q.Get("active") != "false",
	}
	v := shared.NewValidator()
	v.UUID("managerId", filter.ManagerID)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	if shared.SelfOnly(user) {
		emp, err := h.Service.Get(r.Context(), user.EmployeeID)
		if err != nil {
			api.WriteError(w, err, shared.RequestID(r))
			return
		}
		api.Success(w, []employee.Employee{emp}, shared.RequestID(r))
		return
	}
	if user.Role == auth.RoleManager && filter.ManagerID == "" {
		filter.ManagerID = user.EmployeeID
	}
	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.CreateInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	emp, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEmployeeCreate,
		EntityType: "employee",
		EntityID:   emp.ID,
		After:      emp,
	})
	api.Created(w, emp, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "employeeID")
	if shared.SelfOnly(user) && id != user.EmployeeID {
		shared.Forbid(w, r, "acesso restrito ao próprio cadastro")
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, emp, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	var payload employee.UpdateInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	emp, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEmployeeUpdate,
		EntityType: "employee",
		EntityID:   emp.ID,
		Before:     before,
		After:      emp,
	})
	api.Success(w, emp, shared.RequestID(r))
}

func (h *Handler) handleSubordinates(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "employeeID")
	if !auth.IsPrivileged(user.Role) && id != user.EmployeeID {
		shared.Forbid(w, r, "acesso restrito à própria equipe")
		return
	}
	items, err := h.Service.Subordinates(r.Context(), id)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}
