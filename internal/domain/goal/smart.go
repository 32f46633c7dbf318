package goal

import (
	"regexp"
	"time"
)

var (
	actionVerbPattern = regexp.MustCompile(`(?i)\b(aumentar|reduzir|melhorar|implementar|criar|desenvolver)\b`)
	relevancePattern  = regexp.MustCompile(`(?i)\b(impacto|resultado|benefício|objetivo|estratégia|crescimento|melhoria)\b`)
)

// CheckSMART scores the draft against the SMART heuristics. It never
// rejects; feedback lists the criteria that were missed.
func CheckSMART(title, description, unit string, target *float64, start, end time.Time) SmartResult {
	var r SmartResult

	r.Specific = len([]rune(title)) >= minTitleLength &&
		len([]rune(description)) >= minDescLength &&
		actionVerbPattern.MatchString(description)
	if !r.Specific {
		r.Feedback = append(r.Feedback, "Meta precisa ser mais específica com verbo de ação claro")
	}

	r.Measurable = unit != "" && target != nil
	if !r.Measurable {
		r.Feedback = append(r.Feedback, "Meta precisa ter unidade de medida e valor alvo definidos")
	}

	r.Achievable = target != nil && *target > 0 && *target < maxAchievable
	if !r.Achievable {
		r.Feedback = append(r.Feedback, "Valor alvo deve ser realista e atingível")
	}

	r.Relevant = relevancePattern.MatchString(description)
	if !r.Relevant {
		r.Feedback = append(r.Feedback, "Meta precisa demonstrar relevância e alinhamento estratégico")
	}

	months := end.Sub(start).Hours() / 24 / daysPerPlanMonth
	r.TimeBound = months >= minTimeboxMonths && months <= maxTimeboxMonths
	if !r.TimeBound {
		r.Feedback = append(r.Feedback, "Prazo deve estar entre 1 mês e 24 meses")
	}

	for _, ok := range []bool{r.Specific, r.Measurable, r.Achievable, r.Relevant, r.TimeBound} {
		if ok {
			r.Score += smartPointsEach
		}
	}
	return r
}

// Progress is current/target as a percentage capped at 100.
func Progress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := current / target * 100
	if p > progressCompleted {
		return progressCompleted
	}
	if p < 0 {
		return 0
	}
	return p
}

// EvaluateEligibility applies rule to the bonus-eligible goals of one
// employee. Without bonus-eligible goals nobody is eligible.
func EvaluateEligibility(goals []Goal, rule string) (Eligibility, error) {
	if rule != RuleAll && rule != RuleAny {
		return Eligibility{}, ErrInvalidRule
	}
	out := Eligibility{Rule: rule}
	for _, g := range goals {
		if !g.BonusEligible {
			continue
		}
		out.Total++
		if g.Status == StatusCompleted {
			out.Completed++
		}
	}
	switch {
	case out.Total == 0:
		out.Eligible = false
	case rule == RuleAll:
		out.Eligible = out.Completed == out.Total
	default:
		out.Eligible = out.Completed > 0
	}
	return out, nil
}
