package cycle

import (
	"math"
	"strconv"
	"strings"
	"time"
)

func (w Weights) Sum() float64 {
	return w.Self + w.Manager + w.Peer + w.Subordinate
}

// ValidateWeights enforces the 100% rule. The error message carries the
// actual sum so the caller can correct the form.
func ValidateWeights(w Weights) error {
	for _, v := range []float64{w.Self, w.Manager, w.Peer, w.Subordinate} {
		if v < 0 || math.IsNaN(v) {
			return ErrNegativeWeight
		}
	}
	sum := w.Sum()
	if math.Abs(sum-100) > weightTolerance {
		return ErrWeightsSum.Withf("atual %s%%", formatPercent(sum))
	}
	return nil
}

func ValidateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return ErrInvalidDates
	}
	return nil
}

func ValidateThreshold(threshold *float64) error {
	if threshold == nil {
		return nil
	}
	if *threshold < 0 || *threshold > 100 || math.IsNaN(*threshold) {
		return ErrInvalidThreshold
	}
	return nil
}

func ValidateCompetencyWeights(items []CompetencyWeight) error {
	if len(items) == 0 {
		return ErrNoCompetencies
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.CompetencyID)
		if id == "" {
			return ErrCompetencyNotFound
		}
		if item.Weight <= 0 || math.IsNaN(item.Weight) {
			return ErrCompetencyWeight
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateCompetency
		}
		seen[id] = struct{}{}
	}
	return nil
}

// EffectiveThreshold is the cycle override, or def when the cycle has none.
func (c Cycle) EffectiveThreshold(def float64) float64 {
	if c.DivergenceThreshold != nil {
		return *c.DivergenceThreshold
	}
	return def
}

func formatPercent(v float64) string {
	s := strings.TrimRight(strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0"), ".")
	if s == "" {
		return "0"
	}
	return s
}
