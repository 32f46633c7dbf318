package evaluationshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/evaluation"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	SubmitRatings(ctx context.Context, in evaluation.SubmitInput) (evaluation.Detail, error)
	SubmitConsensus(ctx context.Context, in evaluation.ConsensusInput, privileged bool) (evaluation.Evaluation, error)
	RejectConsensus(ctx context.Context, in evaluation.RejectInput, privileged bool) (evaluation.Evaluation, error)
	Finalize(ctx context.Context, id string) (evaluation.Evaluation, error)
	Get(ctx context.Context, id string) (evaluation.Detail, error)
	Evaluation(ctx context.Context, id string) (evaluation.Evaluation, error)
	List(ctx context.Context, filter evaluation.Filter, limit, offset int) ([]evaluation.Evaluation, error)
	CycleSummary(ctx context.Context, cycleID string) (evaluation.Summary, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

type ratingsRequest struct {
	Role    string                   `json:"role" validate:"required,oneof=self manager peer subordinate"`
	Ratings []evaluation.RatingInput `json:"ratings" validate:"required,min=1,max=200,dive"`
}

type consensusRequest struct {
	Score float64 `json:"consensusScore" validate:"gte=0,lte=100"`
	Notes string  `json:"notes" validate:"max=4000"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEvaluationsRead)
	rate := middleware.RequirePermission(auth.PermEvaluationsRate)
	review := middleware.RequirePermission(auth.PermEvaluationsReview)

	r.Route("/evaluations", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(review).Get("/summary", h.handleSummary)
		r.With(read).Get("/{evaluationID}", h.handleGet)
		r.With(rate).Post("/{evaluationID}/ratings", h.handleSubmitRatings)
		r.With(review).Post("/{evaluationID}/consensus", h.handleConsensus)
		r.With(review).Post("/{evaluationID}/consensus/reject", h.handleRejectConsensus)
		r.With(review).Post("/{evaluationID}/finalize", h.handleFinalize)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := evaluation.Filter{
		CycleID:    q.Get("cycleId"),
		EmployeeID: q.Get("employeeId"),
		ManagerID:  q.Get("managerId"),
		Status:     q.Get("status"),
	}
	v := shared.NewValidator()
	v.UUID("cycleId", filter.CycleID)
	v.UUID("employeeId", filter.EmployeeID)
	v.UUID("managerId", filter.ManagerID)
	v.Enum("status", filter.Status, evaluation.Statuses, "status inválido")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	switch {
	case shared.SelfOnly(user):
		filter.EmployeeID = user.EmployeeID
		filter.ManagerID = ""
	case user.Role == auth.RoleManager && filter.EmployeeID != user.EmployeeID:
		filter.ManagerID = user.EmployeeID
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	items, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycleId")
	v := shared.NewValidator()
	v.Required("cycleId", cycleID, "obrigatório")
	v.UUID("cycleId", cycleID)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	summary, err := h.Service.CycleSummary(r.Context(), cycleID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, summary, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	if !canView(user, detail.Evaluation) {
		shared.Forbid(w, r, "sem acesso a esta avaliação")
		return
	}
	api.Success(w, detail, shared.RequestID(r))
}

// canView admits the evaluated employee, their manager and company-wide
// roles. Peers and subordinates rate without reading the result.
func canView(user auth.UserContext, ev evaluation.Evaluation) bool {
	if auth.IsPrivileged(user.Role) {
		return true
	}
	if user.EmployeeID == "" {
		return false
	}
	return ev.EmployeeID == user.EmployeeID || ev.ManagerID == user.EmployeeID
}

func (h *Handler) handleSubmitRatings(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload ratingsRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if user.EmployeeID == "" {
		v.Add("raterId", "usuário sem cadastro de colaborador não pode avaliar")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "evaluationID")
	detail, err := h.Service.SubmitRatings(r.Context(), evaluation.SubmitInput{
		EvaluationID: id,
		RaterID:      user.EmployeeID,
		Role:         payload.Role,
		Ratings:      payload.Ratings,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionRatingsSubmit,
		EntityType: "evaluation",
		EntityID:   id,
		After: map[string]any{
			"role":    payload.Role,
			"ratings": len(payload.Ratings),
			"status":  detail.Status,
		},
	})
	api.Created(w, detail, shared.RequestID(r))
}

func (h *Handler) handleConsensus(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload consensusRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "evaluationID")
	updated, err := h.Service.SubmitConsensus(r.Context(), evaluation.ConsensusInput{
		EvaluationID: id,
		ManagerID:    user.EmployeeID,
		Score:        payload.Score,
		Notes:        payload.Notes,
	}, auth.IsPrivileged(user.Role))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionConsensus,
		EntityType: "evaluation",
		EntityID:   id,
		After:      map[string]any{"consensusScore": updated.ConsensusScore, "status": updated.Status},
	})
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleRejectConsensus(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload rejectRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "evaluationID")
	updated, err := h.Service.RejectConsensus(r.Context(), evaluation.RejectInput{
		EvaluationID: id,
		ManagerID:    user.EmployeeID,
		Reason:       payload.Reason,
	}, auth.IsPrivileged(user.Role))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionConsensusReject,
		EntityType: "evaluation",
		EntityID:   id,
		Before:     map[string]any{"status": evaluation.StatusPendingConsensus},
		After:      map[string]any{"status": updated.Status, "reason": updated.RejectionReason},
	})
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "evaluationID")
	if !auth.IsPrivileged(user.Role) {
		ev, err := h.Service.Evaluation(r.Context(), id)
		if err != nil {
			api.WriteError(w, err, shared.RequestID(r))
			return
		}
		if ev.ManagerID == "" || ev.ManagerID != user.EmployeeID {
			api.WriteError(w, evaluation.ErrNotManager, shared.RequestID(r))
			return
		}
	}
	updated, err := h.Service.Finalize(r.Context(), id)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionFinalize,
		EntityType: "evaluation",
		EntityID:   id,
		After: map[string]any{
			"finalScore":        updated.FinalScore,
			"performanceRating": updated.PerformanceBand,
		},
	})
	api.Success(w, updated, shared.RequestID(r))
}
