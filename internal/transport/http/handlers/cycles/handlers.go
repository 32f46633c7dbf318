package cycleshandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/cycle"
	"avd/internal/domain/evaluation"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in cycle.CreateInput) (cycle.Cycle, error)
	Get(ctx context.Context, id string) (cycle.Cycle, error)
	List(ctx context.Context, status string) ([]cycle.Cycle, error)
	SetWeights(ctx context.Context, cycleID string, w cycle.Weights) (cycle.Weights, error)
	SetCompetencies(ctx context.Context, cycleID string, items []cycle.CompetencyWeight) ([]cycle.CycleCompetency, error)
	Activate(ctx context.Context, cycleID string) (cycle.Cycle, error)
	Complete(ctx context.Context, cycleID string) (cycle.Cycle, error)
	Config(ctx context.Context, cycleID string) (cycle.Config, error)
	CreateCompetency(ctx context.Context, in cycle.CompetencyInput) (cycle.Competency, error)
	ListCompetencies(ctx context.Context, activeOnly bool) ([]cycle.Competency, error)
}

// Enroller opens evaluations for employees of a cycle.
type Enroller interface {
	Enroll(ctx context.Context, cycleID string, employeeIDs []string) (evaluation.EnrollResult, error)
}

type Handler struct {
	Service  Service
	Enroller Enroller
	Audit    shared.Auditor
}

func NewHandler(service Service, enroller Enroller, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Enroller: enroller, Audit: auditor}
}

type createCycleRequest struct {
	Name                string   `json:"name" validate:"required,min=3,max=200"`
	Description         string   `json:"description" validate:"max=2000"`
	StartDate           string   `json:"startDate" validate:"required"`
	EndDate             string   `json:"endDate" validate:"required"`
	DivergenceThreshold *float64 `json:"divergenceThreshold" validate:"omitempty,gte=0,lte=100"`
}

type competenciesRequest struct {
	Competencies []cycle.CompetencyWeight `json:"competencies" validate:"required,min=1,dive"`
}

type enrollRequest struct {
	EmployeeIDs []string `json:"employeeIds" validate:"required,min=1,max=1000,dive,uuid"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermCyclesRead)
	manage := middleware.RequirePermission(auth.PermCyclesManage)

	r.Route("/cycles", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(manage).Post("/", h.handleCreate)
		r.With(read).Get("/{cycleID}", h.handleGet)
		r.With(read).Get("/{cycleID}/config", h.handleConfig)
		r.With(manage).Put("/{cycleID}/weights", h.handleSetWeights)
		r.With(manage).Put("/{cycleID}/competencies", h.handleSetCompetencies)
		r.With(manage).Post("/{cycleID}/activate", h.handleActivate)
		r.With(manage).Post("/{cycleID}/complete", h.handleComplete)
		r.With(manage).Post("/{cycleID}/enroll", h.handleEnroll)
	})
	r.Route("/competencies", func(r chi.Router) {
		r.With(read).Get("/", h.handleListCompetencies)
		r.With(manage).Post("/", h.handleCreateCompetency)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	v := shared.NewValidator()
	v.Enum("status", status, []string{cycle.StatusPlanned, cycle.StatusActive, cycle.StatusClosed}, "status inválido")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	items, err := h.Service.List(r.Context(), status)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createCycleRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	start, end := payload.startEnd(v)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	created, err := h.Service.Create(r.Context(), cycle.CreateInput{
		Name:                payload.Name,
		Description:         payload.Description,
		StartDate:           start,
		EndDate:             end,
		DivergenceThreshold: payload.DivergenceThreshold,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionCycleCreate,
		EntityType: "cycle",
		EntityID:   created.ID,
		After:      created,
	})
	api.Created(w, created, shared.RequestID(r))
}

func (p createCycleRequest) startEnd(v *shared.Validator) (start, end time.Time) {
	if p.StartDate != "" {
		start, _ = v.Date("startDate", p.StartDate)
	}
	if p.EndDate != "" {
		end, _ = v.Date("endDate", p.EndDate)
	}
	return start, end
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, c, shared.RequestID(r))
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Config(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, cfg, shared.RequestID(r))
}

func (h *Handler) handleSetWeights(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	var payload cycle.Weights
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	weights, err := h.Service.SetWeights(r.Context(), cycleID, payload)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionCycleWeights,
		EntityType: "cycle",
		EntityID:   cycleID,
		After:      weights,
	})
	api.Success(w, weights, shared.RequestID(r))
}

func (h *Handler) handleSetCompetencies(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	var payload competenciesRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	items, err := h.Service.SetCompetencies(r.Context(), cycleID, payload.Competencies)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionCycleCompetencies,
		EntityType: "cycle",
		EntityID:   cycleID,
		After:      items,
	})
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Activate)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Complete)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (cycle.Cycle, error)) {
	cycleID := chi.URLParam(r, "cycleID")
	updated, err := apply(r.Context(), cycleID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionCycleStatus,
		EntityType: "cycle",
		EntityID:   cycleID,
		After:      map[string]string{"status": updated.Status},
	})
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	var payload enrollRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	result, err := h.Enroller.Enroll(r.Context(), cycleID, payload.EmployeeIDs)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEnroll,
		EntityType: "cycle",
		EntityID:   cycleID,
		After:      map[string]int{"created": len(result.Created), "existing": len(result.Existing)},
	})
	status := http.StatusOK
	if len(result.Created) > 0 {
		status = http.StatusCreated
	}
	api.WriteJSON(w, status, api.Envelope{Success: true, Data: result, RequestID: shared.RequestID(r)})
}

func (h *Handler) handleListCompetencies(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListCompetencies(r.Context(), r.URL.Query().Get("active") != "false")
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleCreateCompetency(w http.ResponseWriter, r *http.Request) {
	var payload cycle.CompetencyInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	comp, err := h.Service.CreateCompetency(r.Context(), payload)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Created(w, comp, shared.RequestID(r))
}
