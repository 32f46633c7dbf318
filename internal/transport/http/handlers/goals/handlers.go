package goalshandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/goal"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	CreateSMART(ctx context.Context, in goal.CreateInput) (goal.Goal, error)
	UpdateProgress(ctx context.Context, in goal.ProgressInput) (goal.Goal, error)
	Get(ctx context.Context, id string) (goal.Goal, error)
	History(ctx context.Context, id string) ([]goal.ProgressUpdate, error)
	List(ctx context.Context, filter goal.Filter, limit, offset int) ([]goal.Goal, error)
	BonusEligibility(ctx context.Context, employeeID, cycleID, rule string) (goal.Eligibility, error)
}

// Hierarchy answers reporting-line questions for goal ownership checks.
type Hierarchy interface {
	IsManagerOf(ctx context.Context, managerID, employeeID string) (bool, error)
}

type Handler struct {
	Service   Service
	Hierarchy Hierarchy
	Audit     shared.Auditor
	Rule      string
}

func NewHandler(service Service, hierarchy Hierarchy, auditor shared.Auditor, rule string) *Handler {
	if rule == "" {
		rule = goal.RuleAll
	}
	return &Handler{Service: service, Hierarchy: hierarchy, Audit: auditor, Rule: rule}
}

type createGoalRequest struct {
	CycleID         string   `json:"cycleId" validate:"required,uuid"`
	EmployeeID      string   `json:"employeeId" validate:"omitempty,uuid"`
	Title           string   `json:"title" validate:"required,max=255"`
	Description     string   `json:"description" validate:"required"`
	Type            string   `json:"type" validate:"required,oneof=individual team organizational"`
	Category        string   `json:"category" validate:"required,oneof=financial behavioral corporate development"`
	Unit            string   `json:"measurementUnit" validate:"max=50"`
	TargetValue     *float64 `json:"targetValue" validate:"omitempty,gt=0"`
	Weight          int      `json:"weight" validate:"omitempty,min=1,max=100"`
	StartDate       string   `json:"startDate" validate:"required"`
	EndDate         string   `json:"endDate" validate:"required"`
	BonusEligible   bool     `json:"bonusEligible"`
	BonusPercentage *float64 `json:"bonusPercentage" validate:"omitempty,gte=0,lte=100"`
}

type progressRequest struct {
	CurrentValue *float64 `json:"currentValue" validate:"required,gte=0"`
	Note         string   `json:"note" validate:"max=2000"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermGoalsRead)
	write := middleware.RequirePermission(auth.PermGoalsWrite)

	r.Route("/goals", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/eligibility", h.handleEligibility)
		r.With(read).Get("/{goalID}", h.handleGet)
		r.With(read).Get("/{goalID}/progress", h.handleHistory)
		r.With(write).Post("/{goalID}/progress", h.handleProgress)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := goal.Filter{
		EmployeeID: q.Get("employeeId"),
		CycleID:    q.Get("cycleId"),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		Category:   q.Get("category"),
	}
	v := shared.NewValidator()
	v.UUID("employeeId", filter.EmployeeID)
	v.UUID("cycleId", filter.CycleID)
	v.Enum("status", filter.Status, []string{goal.StatusDraft, goal.StatusInProgress, goal.StatusCompleted}, "status inválido")
	v.Enum("type", filter.Type, []string{goal.TypeIndividual, goal.TypeTeam, goal.TypeOrganizational}, "tipo inválido")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	if shared.SelfOnly(user) {
		filter.EmployeeID = user.EmployeeID
	} else if filter.EmployeeID != "" && !h.canManage(w, r, user, filter.EmployeeID) {
		return
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	items, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload createGoalRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	var start, end time.Time
	if payload.StartDate != "" {
		start, _ = v.Date("startDate", payload.StartDate)
	}
	if payload.EndDate != "" {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if payload.Type == goal.TypeIndividual && payload.EmployeeID == "" {
		v.Add("employeeId", "metas individuais exigem colaborador")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	switch {
	case payload.Type != goal.TypeIndividual && shared.SelfOnly(user):
		shared.Forbid(w, r, "apenas gestores criam metas de equipe ou organizacionais")
		return
	case payload.EmployeeID != "" && !h.canManage(w, r, user, payload.EmployeeID):
		return
	}

	created, err := h.Service.CreateSMART(r.Context(), goal.CreateInput{
		CycleID:         payload.CycleID,
		EmployeeID:      payload.EmployeeID,
		Title:           payload.Title,
		Description:     payload.Description,
		Type:            payload.Type,
		Category:        payload.Category,
		Unit:            payload.Unit,
		TargetValue:     payload.TargetValue,
		Weight:          payload.Weight,
		StartDate:       start,
		EndDate:         end,
		BonusEligible:   payload.BonusEligible,
		BonusPercentage: payload.BonusPercentage,
		CreatedBy:       user.UserID,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionGoalCreate,
		EntityType: "goal",
		EntityID:   created.ID,
		After:      created,
	})
	api.Created(w, created, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	api.Success(w, g, shared.RequestID(r))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	items, err := h.Service.History(r.Context(), g.ID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload progressRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	before, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	if before.EmployeeID == "" && !auth.IsPrivileged(user.Role) && user.Role != auth.RoleManager {
		shared.Forbid(w, r, "apenas gestores atualizam metas compartilhadas")
		return
	}
	updated, err := h.Service.UpdateProgress(r.Context(), goal.ProgressInput{
		GoalID:       before.ID,
		CurrentValue: *payload.CurrentValue,
		Note:         payload.Note,
		UpdatedBy:    user.UserID,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionGoalProgress,
		EntityType: "goal",
		EntityID:   updated.ID,
		Before:     map[string]any{"currentValue": before.CurrentValue, "progress": before.Progress, "status": before.Status},
		After:      map[string]any{"currentValue": updated.CurrentValue, "progress": updated.Progress, "status": updated.Status},
	})
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	employeeID, cycleID := q.Get("employeeId"), q.Get("cycleId")
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	v := shared.NewValidator()
	v.Required("employeeId", employeeID, "obrigatório")
	v.Required("cycleId", cycleID, "obrigatório")
	v.UUID("employeeId", employeeID)
	v.UUID("cycleId", cycleID)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	if !h.canManage(w, r, user, employeeID) {
		return
	}
	result, err := h.Service.BonusEligibility(r.Context(), employeeID, cycleID, h.Rule)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, result, shared.RequestID(r))
}

// loadVisible fetches the goal named in the path, answering 403 when the
// caller may not see it.
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (goal.Goal, bool) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return goal.Goal{}, false
	}
	g, err := h.Service.Get(r.Context(), chi.URLParam(r, "goalID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return goal.Goal{}, false
	}
	if g.EmployeeID == "" {
		return g, true
	}
	if !h.canManage(w, r, user, g.EmployeeID) {
		return goal.Goal{}, false
	}
	return g, true
}

// canManage admits the employee themself, anyone above them in the
// hierarchy and company-wide roles. It answers the request on refusal.
func (h *Handler) canManage(w http.ResponseWriter, r *http.Request, user auth.UserContext, employeeID string) bool {
	if auth.IsPrivileged(user.Role) || employeeID == user.EmployeeID {
		return true
	}
	if user.Role == auth.RoleManager && user.EmployeeID != "" && h.Hierarchy != nil {
		ok, err := h.Hierarchy.IsManagerOf(r.Context(), user.EmployeeID, employeeID)
		if err != nil {
			api.WriteError(w, err, shared.RequestID(r))
			return false
		}
		if ok {
			return true
		}
	}
	shared.Forbid(w, r, "sem acesso às metas deste colaborador")
	return false
}
