package timeclockhandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/domain/timeclock"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
	"avd/internal/transport/http/shared"
)

type Service interface {
	ImportRecords(ctx context.Context, records []timeclock.RecordInput, source string) (timeclock.ImportResult, error)
	LogActivity(ctx context.Context, in timeclock.ActivityInput) (timeclock.Activity, error)
	DetectDiscrepancies(ctx context.Context, day time.Time) (timeclock.DetectionSummary, error)
	Discrepancy(ctx context.Context, id string) (timeclock.Discrepancy, error)
	ListDiscrepancies(ctx context.Context, filter timeclock.Filter, limit int) ([]timeclock.Discrepancy, error)
	Justify(ctx context.Context, id, justification, reviewerID string) (timeclock.Discrepancy, error)
	Stats(ctx context.Context, from, to time.Time) (timeclock.Stats, error)
	ListAlerts(ctx context.Context, status string, limit int) ([]timeclock.Alert, error)
	ResolveAlert(ctx context.Context, id, userID string) (timeclock.Alert, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
	now     func() time.Time
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor, now: time.Now}
}

type importRequest struct {
	Source  string                  `json:"source" validate:"omitempty,oneof=import manual api"`
	Records []timeclock.RecordInput `json:"records" validate:"required,min=1"`
}

type activityRequest struct {
	EmployeeID  string `json:"employeeId" validate:"omitempty,uuid"`
	Date        string `json:"date" validate:"required"`
	Minutes     int    `json:"minutes" validate:"gt=0,lte=1440"`
	Description string `json:"description" validate:"required,max=2000"`
}

type justifyRequest struct {
	Justification string `json:"justification" validate:"required,max=4000"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermTimeclockRead)
	write := middleware.RequirePermission(auth.PermTimeclockWrite)
	review := middleware.RequirePermission(auth.PermTimeclockReview)
	hrOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)

	r.Route("/timeclock", func(r chi.Router) {
		r.With(hrOnly).Post("/records/import", h.handleImport)
		r.With(write).Post("/activities", h.handleLogActivity)
		r.With(hrOnly).Post("/discrepancies/detect", h.handleDetect)
		r.With(read).Get("/discrepancies", h.handleListDiscrepancies)
		r.With(read).Get("/discrepancies/{discrepancyID}", h.handleGetDiscrepancy)
		r.With(write).Post("/discrepancies/{discrepancyID}/justify", h.handleJustify)
		r.With(review).Get("/stats", h.handleStats)
	})
	r.Route("/alerts", func(r chi.Router) {
		r.With(review).Get("/", h.handleListAlerts)
		r.With(review).Post("/{alertID}/resolve", h.handleResolveAlert)
	})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload importRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Source == "" {
		payload.Source = timeclock.SourceImport
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	result, err := h.Service.ImportRecords(r.Context(), payload.Records, payload.Source)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionTimeImport,
		EntityType: "time_clock_records",
		EntityID:   payload.Source,
		After:      map[string]int{"total": result.Total, "success": result.Success, "failed": result.Failed},
	})
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload activityRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.EmployeeID == "" {
		payload.EmployeeID = user.EmployeeID
	}
	v := shared.NewValidator()
	v.Struct(payload)
	v.Required("employeeId", payload.EmployeeID, "obrigatório")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	if payload.EmployeeID != user.EmployeeID && !auth.IsPrivileged(user.Role) {
		shared.Forbid(w, r, "atividades só podem ser registradas para o próprio colaborador")
		return
	}
	activity, err := h.Service.LogActivity(r.Context(), timeclock.ActivityInput{
		EmployeeID:  payload.EmployeeID,
		Date:        payload.Date,
		Minutes:     payload.Minutes,
		Description: payload.Description,
	})
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Created(w, activity, shared.RequestID(r))
}

// handleDetect runs discrepancy detection for ?date=, defaulting to
// yesterday.
func (h *Handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	day := h.now().UTC().AddDate(0, 0, -1)
	if raw := r.URL.Query().Get("date"); raw != "" {
		v := shared.NewValidator()
		parsed, _ := v.Date("date", raw)
		if v.Reject(w, shared.RequestID(r)) {
			return
		}
		day = parsed
	}
	summary, err := h.Service.DetectDiscrepancies(r.Context(), day)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionJobRun,
		EntityType: "job",
		EntityID:   "timeclock.discrepancies",
		After:      summary,
	})
	api.Success(w, summary, shared.RequestID(r))
}

func (h *Handler) handleListDiscrepancies(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	filter := timeclock.Filter{
		EmployeeID: q.Get("employeeId"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		From:       shared.QueryDate(r, v, "from"),
		To:         shared.QueryDate(r, v, "to"),
	}
	v.UUID("employeeId", filter.EmployeeID)
	if raw := q.Get("minPercentage"); raw != "" {
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil || pct < 0 {
			v.Add("minPercentage", "número não negativo")
		}
		filter.MinPercentage = pct
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	if !auth.Allowed(user.Role, auth.PermTimeclockReview) {
		filter.EmployeeID = user.EmployeeID
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	items, err := h.Service.ListDiscrepancies(r.Context(), filter, page.Limit)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleGetDiscrepancy(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	api.Success(w, d, shared.RequestID(r))
}

func (h *Handler) handleJustify(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload justifyRequest
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
	updated, err := h.Service.Justify(r.Context(), before.ID, payload.Justification, user.UserID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionDiscrepancyReview,
		EntityType: "time_discrepancy",
		EntityID:   updated.ID,
		Before:     map[string]string{"status": before.Status},
		After:      map[string]string{"status": updated.Status, "justification": payload.Justification},
	})
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	to := h.now().UTC()
	from := to.AddDate(0, 0, -30)
	if d := shared.QueryDate(r, v, "from"); d != nil {
		from = *d
	}
	if d := shared.QueryDate(r, v, "to"); d != nil {
		to = *d
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	st, err := h.Service.Stats(r.Context(), from, to)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, st, shared.RequestID(r))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	v := shared.NewValidator()
	v.Enum("status", status, []string{timeclock.AlertOpen, timeclock.AlertResolved}, "status inválido")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	items, err := h.Service.ListAlerts(r.Context(), status, page.Limit)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "alertID")
	alert, err := h.Service.ResolveAlert(r.Context(), id, user.UserID)
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionAlertResolve,
		EntityType: "alert",
		EntityID:   id,
		After:      map[string]string{"status": alert.Status},
	})
	api.Success(w, alert, shared.RequestID(r))
}

func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (timeclock.Discrepancy, bool) {
	user, ok := shared.Caller(w, r)
	if !ok {
		return timeclock.Discrepancy{}, false
	}
	d, err := h.Service.Discrepancy(r.Context(), chi.URLParam(r, "discrepancyID"))
	if err != nil {
		api.WriteError(w, err, shared.RequestID(r))
		return timeclock.Discrepancy{}, false
	}
	if !auth.Allowed(user.Role, auth.PermTimeclockReview) && d.EmployeeID != user.EmployeeID {
		shared.Forbid(w, r, "sem acesso a esta divergência")
		return timeclock.Discrepancy{}, false
	}
	return d, true
}
