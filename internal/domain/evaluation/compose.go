package evaluation

import (
	"math"

	"avd/internal/domain/cycle"
)

// CompetencyScore is the composed result for one competency of a cycle.
// Score is nil when no weighted role has data.
type CompetencyScore struct {
	CompetencyID string       `json:"competencyId"`
	Name         string       `json:"name"`
	Weight       float64      `json:"weight"`
	Roles        RoleAverages `json:"roles"`
	Score        *float64     `json:"score"`
}

func roleWeight(w cycle.Weights, role string) float64 {
	switch role {
	case RoleSelf:
		return w.Self
	case RoleManager:
		return w.Manager
	case RolePeer:
		return w.Peer
	case RoleSubordinate:
		return w.Subordinate
	}
	return 0
}

// ComposeCompetency combines role means with the cycle weights,
// renormalising over the roles that have data.
func ComposeCompetency(avg RoleAverages, w cycle.Weights) (float64, bool) {
	var num, den float64
	for _, role := range Roles {
		rs := avg.Get(role)
		weight := roleWeight(w, role)
		if !rs.HasData() || weight <= 0 {
			continue
		}
		num += rs.Value * weight
		den += weight
	}
	if den == 0 {
		return 0, false
	}
	return clampScore(num / den), true
}

// ComposeOverall is the competency-weighted mean of the scored
// competencies. Competencies without weights count equally.
func ComposeOverall(scores []CompetencyScore) (float64, bool) {
	useWeights := false
	for _, cs := range scores {
		if cs.Score != nil && cs.Weight > 0 {
			useWeights = true
			break
		}
	}
	var num, den float64
	for _, cs := range scores {
		if cs.Score == nil {
			continue
		}
		weight := 1.0
		if useWeights {
			weight = cs.Weight
		}
		if weight <= 0 {
			continue
		}
		num += *cs.Score * weight
		den += weight
	}
	if den == 0 {
		return 0, false
	}
	return clampScore(num / den), true
}

// RoleOverall is the competency-weighted mean of a single role's averages,
// used for the self and manager scores.
func RoleOverall(scores []CompetencyScore, role string) (float64, bool) {
	projected := make([]CompetencyScore, 0, len(scores))
	for _, cs := range scores {
		rs := cs.Roles.Get(role)
		p := CompetencyScore{CompetencyID: cs.CompetencyID, Weight: cs.Weight}
		if rs.HasData() {
			v := rs.Value
			p.Score = &v
		}
		projected = append(projected, p)
	}
	return ComposeOverall(projected)
}

// Breakdown aggregates and composes every competency configured for the
// cycle. Ratings for competencies outside the cycle are ignored.
func Breakdown(ratings []Rating, cfg cycle.Config, scale Scale) ([]CompetencyScore, error) {
	if cfg.Weights == nil {
		return nil, ErrNoWeights
	}
	byComp, err := AggregateByCompetency(ratings, scale)
	if err != nil {
		return nil, err
	}
	out := make([]CompetencyScore, 0, len(cfg.Competencies))
	for _, cc := range cfg.Competencies {
		cs := CompetencyScore{CompetencyID: cc.CompetencyID, Name: cc.Name, Weight: cc.Weight, Roles: byComp[cc.CompetencyID]}
		if score, ok := ComposeCompetency(cs.Roles, *cfg.Weights); ok {
			v := round2(score)
			cs.Score = &v
		}
		out = append(out, cs)
	}
	return out, nil
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
