package bonushandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/bonus"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	Classifier() *bonus.Classifier
	Policy(ctx context.Context, cycleID string) (bonus.Policy, error)
	SetPolicy(ctx context.Context, p bonus.Policy) (bonus.Policy, error)
	Calculate(ctx context.Context, cycleID, employeeID string) (bonus.Calculation, error)
	CalculateCycle(ctx context.Context, cycleID string) (bonus.BatchResult, error)
	MarkPaid(ctx context.Context, id string) (bonus.Calculation, error)
	Get(ctx context.Context, id string) (bonus.Calculation, error)
	List(ctx context.Context, cycleID, status string) ([]bonus.Calculation, error)
	Statement(ctx context.Context, id string) ([]byte, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
	Log     *zap.Logger
}

func NewHandler(service Service, auditor shared.Auditor, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: service, Audit: auditor, Log: log}
}

type policyRequest struct {
	Multipliers     map[string]float64 `json:"multipliers" validate:"required,min=1,dive,gte=0,lte=10"`
	EligibilityRule string             `json:"eligibilityRule" validate:"required,oneof=all any"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermBonusRead)
	manage := middleware.RequirePermission(auth.PermBonusManage)

	r.Route("/bonus", func(r chi.Router) {
		r.With(read).Get("/bands", h.handleBands)
		r.With(read).Get("/cycles/{cycleID}/policy", h.handleGetPolicy)
		r.With(manage).Put("/cycles/{cycleID}/policy", h.handleSetPolicy)
		r.With(manage).Post("/cycles/{cycleID}/calculate", h.handleCalculateCycle)
		r.With(manage).Post("/cycles/{cycleID}/employees/{employeeID}/calculate", h.handleCalculate)
		r.With(read).Get("/calculations", h.handleList)
		r.With(read).Get("/calculations/{calculationID}", h.handleGet)
		r.With(read).Get("/calculations/{calculationID}/statement", h.handleStatement)
		r.With(manage).Post("/calculations/{calculationID}/pay", h.handlePay)
	})
}

func (h *Handler) handleBands(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Classifier().Bands(), shared.RequestID(r))
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Policy(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, p, shared.RequestID(r))
}

func (h *Handler) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	var payload policyRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	before, err := h.Service.Policy(r.Context(), cycleID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	p, err := h.Service.SetPolicy(r.Context(), bonus.Policy{
		CycleID:         cycleID,
		Multipliers:     payload.Multipliers,
		EligibilityRule: payload.EligibilityRule,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionBonusPolicy,
		EntityType: "cycle",
		EntityID:   cycleID,
		Before:     before,
		After:      p,
	})
	api.Success(w, p, shared.RequestID(r))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	cycleID, employeeID := chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID")
	calc, err := h.Service.Calculate(r.Context(), cycleID, employeeID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionBonusCalculate,
		EntityType: "bonus_calculation",
		EntityID:   calc.ID,
		After:      calc,
	})
	api.Success(w, calc, shared.RequestID(r))
}

func (h *Handler) handleCalculateCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	result, err := h.Service.CalculateCycle(r.Context(), cycleID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	h.Log.Info("bonus batch calculated",
		zap.String("cycleId", cycleID),
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionBonusCalculate,
		EntityType: "cycle",
		EntityID:   cycleID,
		After:      result,
	})
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	cycleID, status := q.Get("cycleId"), q.Get("status")
	v := shared.NewValidator()
	v.UUID("cycleId", cycleID)
	v.Enum("status", status, []string{bonus.StatusCalculated, bonus.StatusPaid}, "status inválido")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	items, err := h.Service.List(r.Context(), cycleID, status)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	if !auth.Allowed(user.Role, auth.PermBonusManage) {
		own := make([]bonus.Calculation, 0, 1)
		for _, c := range items {
			if c.EmployeeID == user.EmployeeID {
				own = append(own, c)
			}
		}
		items = own
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	api.Success(w, calc, shared.RequestID(r))
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	pdf, err := h.Service.Statement(r.Context(), calc.ID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=bonus-"+calc.ID+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.Log.Warn("statement write failed", zap.String("calculationId", calc.ID), zap.Error(err))
	}
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "calculationID")
	calc, err := h.Service.MarkPaid(r.Context(), id)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionBonusPaid,
		EntityType: "bonus_calculation",
		EntityID:   id,
		Before:     map[string]string{"status": bonus.StatusCalculated},
		After:      map[string]any{"status": calc.Status, "paidAt": calc.PaidAt},
	})
	api.Success(w, calc, shared.RequestID(r))
}

func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (bonus.Calculation, bool) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return bonus.Calculation{}, false
	}
	calc, err := h.Service.Get(r.Context(), chi.URLParam(r, "calculationID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return bonus.Calculation{}, false
	}
	if !auth.Allowed(user.Role, auth.PermBonusManage) && calc.EmployeeID != user.EmployeeID {
		shared.Forbid(w, r, "sem acesso a este cálculo de bônus")
		return bonus.Calculation{}, false
	}
	return calc, true
}
