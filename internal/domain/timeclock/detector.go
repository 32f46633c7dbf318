package timeclock

import (
	"fmt"
	"math"
)

// Thresholds are percentages of clock time. Below Acceptable the day is
// acceptable; above Alert an alert is raised.
type Thresholds struct {
	Acceptable float64
	Alert      float64
}

var DefaultThresholds = Thresholds{Acceptable: 10, Alert: 20}

func (t Thresholds) Validate() error {
	if t.Acceptable < 0 || t.Alert < t.Acceptable || math.IsNaN(t.Acceptable) || math.IsNaN(t.Alert) {
		return ErrInvalidThresholds.Withf("aceitável %g, alerta %g", t.Acceptable, t.Alert)
	}
	return nil
}

type Analysis struct {
	ClockMinutes         int
	ActivityMinutes      int
	DifferenceMinutes    int
	DifferencePercentage float64
	Type                 string
	Alert                bool
	Severity             string
}

// Analyze compares clock and activity minutes of one day. A day without
// clock time has nothing to compare against and reports 0%.
func Analyze(clockMinutes, activityMinutes int, t Thresholds) Analysis {
	diff := clockMinutes - activityMinutes
	var pct float64
	if clockMinutes > 0 {
		pct = math.Abs(float64(diff)) / float64(clockMinutes) * 100
	}
	a := Analysis{
		ClockMinutes:         clockMinutes,
		ActivityMinutes:      activityMinutes,
		DifferenceMinutes:    diff,
		DifferencePercentage: math.Round(pct*100) / 100,
	}
	switch {
	case pct < t.Acceptable:
		a.Type = TypeAcceptable
	case diff < 0:
		a.Type = TypeOverReported
	default:
		a.Type = TypeUnderReported
	}
	if pct > t.Alert {
		a.Alert = true
		a.Severity = Severity(pct)
	}
	return a
}

func Severity(pct float64) string {
	switch {
	case pct > 50:
		return SeverityCritical
	case pct > 30:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func alertFor(d DayTotal, a Analysis, day string) Alert {
	return Alert{
		EmployeeID: d.EmployeeID,
		Type:       AlertTypeTimeDiscrepancy,
		Severity:   a.Severity,
		Title:      fmt.Sprintf("Discrepância de %.0f%% entre ponto e atividades", a.DifferencePercentage),
		Message: fmt.Sprintf("%s registrou %d minutos no ponto e %d minutos em atividades em %s.",
			d.EmployeeName, a.ClockMinutes, a.ActivityMinutes, day),
		Status: AlertOpen,
	}
}
