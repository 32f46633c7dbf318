package evaluation

import (
	"encoding/json"
	"math"
)

// Scale is the range raters score on. Averages are reported on 0-100.
type Scale struct {
	Min float64
	Max float64
}

func DefaultScale() Scale {
	return Scale{Min: 1, Max: 5}
}

func (s Scale) Check(score float64) error {
	if math.IsNaN(score) || score < s.Min || score > s.Max {
		return ErrScoreOutOfRange.Withf("%g fora de %g a %g", score, s.Min, s.Max)
	}
	return nil
}

func (s Scale) Normalize(score float64) float64 {
	if s.Max <= 0 {
		return 0
	}
	return score / s.Max * 100
}

// RoleScore is the mean of one rater role. A zero Raters count means no
// rater of the role submitted, which is distinct from a zero average.
type RoleScore struct {
	Value  float64
	Raters int
}

func (r RoleScore) HasData() bool {
	return r.Raters > 0
}

func (r RoleScore) MarshalJSON() ([]byte, error) {
	if !r.HasData() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Value  float64 `json:"value"`
		Raters int     `json:"raters"`
	}{round2(r.Value), r.Raters})
}

type RoleAverages struct {
	Self        RoleScore `json:"self"`
	Manager     RoleScore `json:"manager"`
	Peer        RoleScore `json:"peer"`
	Subordinate RoleScore `json:"subordinate"`
}

func (a RoleAverages) Get(role string) RoleScore {
	switch role {
	case RoleSelf:
		return a.Self
	case RoleManager:
		return a.Manager
	case RolePeer:
		return a.Peer
	case RoleSubordinate:
		return a.Subordinate
	}
	return RoleScore{}
}

func (a *RoleAverages) set(role string, rs RoleScore) {
	switch role {
	case RoleSelf:
		a.Self = rs
	case RoleManager:
		a.Manager = rs
	case RolePeer:
		a.Peer = rs
	case RoleSubordinate:
		a.Subordinate = rs
	}
}

// Aggregate folds the ratings of a single competency into per-role means
// on the 0-100 scale.
func Aggregate(ratings []Rating, scale Scale) (RoleAverages, error) {
	sums := make(map[string]float64, len(Roles))
	counts := make(map[string]int, len(Roles))
	for _, r := range ratings {
		if !ValidRole(r.RaterRole) {
			return RoleAverages{}, ErrInvalidRole
		}
		if err := scale.Check(r.Score); err != nil {
			return RoleAverages{}, err
		}
		sums[r.RaterRole] += r.Score
		counts[r.RaterRole]++
	}
	var out RoleAverages
	for _, role := range Roles {
		n := counts[role]
		if n == 0 {
			continue
		}
		out.set(role, RoleScore{Value: scale.Normalize(sums[role] / float64(n)), Raters: n})
	}
	return out, nil
}

// AggregateByCompetency groups ratings by competency and aggregates each.
func AggregateByCompetency(ratings []Rating, scale Scale) (map[string]RoleAverages, error) {
	grouped := make(map[string][]Rating)
	for _, r := range ratings {
		grouped[r.CompetencyID] = append(grouped[r.CompetencyID], r)
	}
	out := make(map[string]RoleAverages, len(grouped))
	for id, group := range grouped {
		avg, err := Aggregate(group, scale)
		if err != nil {
			return nil, err
		}
		out[id] = avg
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
