package timeclock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"avd/internal/domain/notifications"
	"avd/internal/platform/logger"
)

type Notifier interface {
	Notify(ctx context.Context, intent notifications.Intent) error
}

type Options struct {
	Thresholds Thresholds
	BaseURL    string
}

type Service struct {
	store    StoreAPI
	notifier Notifier
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store StoreAPI, notifier Notifier, opts Options, log *zap.Logger) (*Service, error) {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		notifier: notifier,
		opts:     opts,
		log:      logger.OrNop(log),
		now:      time.Now,
	}, nil
}

// ImportRecords stores each record independently; a bad record is reported
// in the result without stopping the others.
func (s *Service) ImportRecords(ctx context.Context, records []RecordInput, source string) (ImportResult, error) {
	if source == "" {
		source = SourceImport
	}
	if !ValidSource(source) {
		return ImportResult{}, ErrInvalidSource
	}
	if len(records) == 0 {
		return ImportResult{}, ErrEmptyImport
	}
	if len(records) > maxImportSize {
		return ImportResult{}, ErrImportTooLarge.Withf("máximo %d", maxImportSize)
	}
	result := ImportResult{Total: len(records), Errors: []string{}}
	for _, in := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rec, err := buildRecord(in, source)
		if err == nil {
			_, err = s.store.UpsertRecord(ctx, rec)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("colaborador %s em %s: %v", in.EmployeeID, in.Date, err))
			continue
		}
		result.Success++
	}
	s.log.Info("time clock records imported",
		zap.String("source", source),
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))
	return result, nil
}

func buildRecord(in RecordInput, source string) (Record, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return Record{}, ErrEmployeeRequired
	}
	day, err := ParseDate(in.Date)
	if err != nil {
		return Record{}, err
	}
	if in.BreakMinutes < 0 {
		return Record{}, ErrNegativeMinutes
	}
	rec := Record{EmployeeID: employeeID, Date: day, BreakMinutes: in.BreakMinutes, Source: source}
	if rec.ClockIn, err = parseClock(in.ClockIn); err != nil {
		return Record{}, err
	}
	if rec.ClockOut, err = parseClock(in.ClockOut); err != nil {
		return Record{}, err
	}
	switch {
	case in.WorkedMinutes != nil:
		rec.WorkedMinutes = *in.WorkedMinutes
	case rec.ClockIn != nil && rec.ClockOut != nil:
		if rec.ClockOut.Before(*rec.ClockIn) {
			return Record{}, ErrClockOrder
		}
		rec.WorkedMinutes = int(rec.ClockOut.Sub(*rec.ClockIn)/time.Minute) - in.BreakMinutes
	default:
		return Record{}, ErrNoWorkedTime
	}
	if rec.WorkedMinutes < 0 {
		return Record{}, ErrNegativeMinutes
	}
	return rec, nil
}

func parseClock(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, ErrInvalidClock.Withf("%q", value)
	}
	return &t, nil
}

// ParseDate reads a calendar day as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func (s *Service) LogActivity(ctx context.Context, in ActivityInput) (Activity, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Description = strings.TrimSpace(in.Description)
	if in.EmployeeID == "" {
		return Activity{}, ErrEmployeeRequired
	}
	day, err := ParseDate(in.Date)
	if err != nil {
		return Activity{}, err
	}
	if in.Minutes <= 0 {
		return Activity{}, ErrInvalidMinutes
	}
	if in.Description == "" {
		return Activity{}, ErrDescription
	}
	return s.store.CreateActivity(ctx, Activity{
		EmployeeID:  in.EmployeeID,
		Date:        day,
		Minutes:     in.Minutes,
		Description: in.Description,
	})
}

// DetectDiscrepancies analyses one calendar day. Running it again for the
// same day changes nothing.
func (s *Service) DetectDiscrepancies(ctx context.Context, day time.Time) (DetectionSummary, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	summary := DetectionSummary{Date: day.Format(dateLayout), Errors: []ItemError{}}
	totals, err := s.store.DayTotals(ctx, day)
	if err != nil {
		return summary, err
	}
	for _, total := range totals {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		created, alerted, err := s.detect(ctx, day, total)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{EmployeeID: total.EmployeeID, Error: err.Error()})
			s.log.Warn("discrepancy detection failed",
				zap.String("date", summary.Date),
				zap.String("employeeId", total.EmployeeID),
				zap.Error(err))
			continue
		}
		summary.Succeeded++
		if created {
			summary.Created++
		} else {
			summary.Skipped++
		}
		if alerted {
			summary.Alerts++
		}
	}
	s.log.Info("discrepancy detection finished",
		zap.String("date", summary.Date),
		zap.Int("processed", summary.Processed),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("alerts", summary.Alerts),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *Service) detect(ctx context.Context, day time.Time, total DayTotal) (bool, bool, error) {
	a := Analyze(total.ClockMinutes, total.ActivityMinutes, s.opts.Thresholds)
	d := Discrepancy{
		EmployeeID:           total.EmployeeID,
		Date:                 day,
		ClockMinutes:         a.ClockMinutes,
		ActivityMinutes:      a.ActivityMinutes,
		DifferenceMinutes:    a.DifferenceMinutes,
		DifferencePercentage: a.DifferencePercentage,
		Type:                 a.Type,
		Status:               StatusPending,
	}
	var alert *Alert
	if a.Alert {
		al := alertFor(total, a, day.Format("02/01/2006"))
		al.ReferenceDate = day
		alert = &al
	}
	created, alerted, err := s.store.SaveDiscrepancy(ctx, d, alert)
	if err != nil {
		return false, false, err
	}
	if alerted {
		s.notifyAlert(ctx, total, a, day)
	}
	return created, alerted, nil
}

// notifyAlert tells the employee's manager. Employees without a manager
// only get the stored alert.
func (s *Service) notifyAlert(ctx context.Context, total DayTotal, a Analysis, day time.Time) {
	if s.notifier == nil || total.ManagerID == "" {
		return
	}
	intent := notifications.DiscrepancyAlert(total.ManagerID, total.EmployeeName, day.Format("02/01/2006"),
		a.DifferencePercentage, a.Severity, strings.TrimRight(s.opts.BaseURL, "/")+"/discrepancias")
	if err := s.notifier.Notify(ctx, intent); err != nil {
		s.log.Warn("discrepancy alert notification failed",
			zap.String("employeeId", total.EmployeeID),
			zap.String("managerId", total.ManagerID),
			zap.Error(err))
	}
}

func (s *Service) Discrepancy(ctx context.Context, id string) (Discrepancy, error) {
	return s.store.GetDiscrepancy(ctx, id)
}

func (s *Service) ListDiscrepancies(ctx context.Context, filter Filter, limit int) ([]Discrepancy, error) {
	if filter.Type != "" && !ValidType(filter.Type) {
		return nil, ErrInvalidFilter.Withf("tipo %q", filter.Type)
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, ErrInvalidFilter.Withf("status %q", filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, ErrInvalidRange
	}
	return s.store.ListDiscrepancies(ctx, filter, clampLimit(limit))
}

// Justify records the employee's or reviewer's explanation for a pending
// discrepancy.
func (s *Service) Justify(ctx context.Context, id, justification, reviewerID string) (Discrepancy, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return Discrepancy{}, ErrJustification
	}
	return s.store.Justify(ctx, id, justification, reviewerID, s.now())
}

func (s *Service) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	if to.Before(from) {
		return Stats{}, ErrInvalidRange
	}
	st, err := s.store.Stats(ctx, from, to)
	if err != nil {
		return Stats{}, err
	}
	st.From = from.Format(dateLayout)
	st.To = to.Format(dateLayout)
	return st, nil
}

func (s *Service) ListAlerts(ctx context.Context, status string, limit int) ([]Alert, error) {
	switch status {
	case "", AlertOpen, AlertResolved:
	default:
		return nil, ErrInvalidFilter.Withf("status %q", status)
	}
	return s.store.ListAlerts(ctx, status, clampLimit(limit))
}

func (s *Service) ResolveAlert(ctx context.Context, id, userID string) (Alert, error) {
	return s.store.ResolveAlert(ctx, id, userID, s.now())
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
