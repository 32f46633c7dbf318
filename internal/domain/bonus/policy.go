package bonus

import (
	"math"
	"time"
)

const (
	RuleAll = "all"
	RuleAny = "any"
)

// Policy decides how much each band earns in a cycle.
type Policy struct {
	CycleID         string             `json:"cycleId,omitempty"`
	Multipliers     map[string]float64 `json:"multipliers"`
	EligibilityRule string             `json:"eligibilityRule"`
	Default         bool               `json:"default"`
	UpdatedAt       *time.Time         `json:"updatedAt,omitempty"`
}

// ValidatePolicy requires a multiplier in [0,10] for every band and no
// multipliers for unknown bands.
func ValidatePolicy(p Policy, c *Classifier) error {
	if p.EligibilityRule != RuleAll && p.EligibilityRule != RuleAny {
		return ErrInvalidRule
	}
	for _, b := range c.Bands() {
		if _, ok := p.Multipliers[b.Name]; !ok {
			return ErrInvalidMultipliers.Withf("faixa %s sem multiplicador", b.Name)
		}
	}
	for name, m := range p.Multipliers {
		if !c.has(name) {
			return ErrInvalidMultipliers.Withf("faixa %s desconhecida", name)
		}
		if m < 0 || m > maxMultiplier || math.IsNaN(m) {
			return ErrInvalidMultipliers.Withf("multiplicador de %s fora de 0 a %d", name, maxMultiplier)
		}
	}
	return nil
}

// Amount is baseSalary x multiplier when eligible, rounded to cents.
func Amount(baseSalary, multiplier float64, eligible bool) float64 {
	if !eligible || baseSalary <= 0 || multiplier <= 0 {
		return 0
	}
	return math.Round(baseSalary*multiplier*100) / 100
}
