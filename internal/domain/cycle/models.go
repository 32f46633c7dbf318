package cycle

import "time"

type Cycle struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	Status              string    `json:"status"`
	DivergenceThreshold *float64  `json:"divergenceThreshold,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Weights are the per-rater-role percentages of a cycle.
type Weights struct {
	Self        float64 `json:"selfWeight"`
	Manager     float64 `json:"managerWeight"`
	Peer        float64 `json:"peerWeight"`
	Subordinate float64 `json:"subordinateWeight"`
}

type Competency struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}

type CycleCompetency struct {
	CompetencyID string  `json:"competencyId"`
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
}

type CompetencyWeight struct {
	CompetencyID string  `json:"competencyId" validate:"required,uuid"`
	Weight       float64 `json:"weight" validate:"gt=0"`
}

// Config is everything scoring needs to know about a cycle.
type Config struct {
	Cycle        Cycle             `json:"cycle"`
	Weights      *Weights          `json:"weights,omitempty"`
	Competencies []CycleCompetency `json:"competencies"`
}

type CreateInput struct {
	Name                string
	Description         string
	StartDate           time.Time
	EndDate             time.Time
	DivergenceThreshold *float64
}

type CompetencyInput struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
