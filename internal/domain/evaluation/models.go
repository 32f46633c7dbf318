package evaluation

import "time"

type Evaluation struct {
	ID                 string     `json:"id"`
	CycleID            string     `json:"cycleId"`
	EmployeeID         string     `json:"employeeId"`
	ManagerID          string     `json:"managerId,omitempty"`
	Status             string     `json:"workflowStatus"`
	SelfScore          *float64   `json:"selfScore"`
	ManagerScore       *float64   `json:"managerScore"`
	ConsensusScore     *float64   `json:"consensusScore"`
	FinalScore         *float64   `json:"finalScore"`
	PerformanceBand    string     `json:"performanceRating,omitempty"`
	ConsensusNotes     string     `json:"consensusNotes,omitempty"`
	ConsensusBy        string     `json:"consensusBy,omitempty"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`
	RejectedBy         string     `json:"rejectedBy,omitempty"`
	SelfSubmittedAt    *time.Time `json:"selfSubmittedAt,omitempty"`
	ManagerSubmittedAt *time.Time `json:"managerSubmittedAt,omitempty"`
	PendingConsensusAt *time.Time `json:"pendingConsensusAt,omitempty"`
	ConsensusAt        *time.Time `json:"consensusAt,omitempty"`
	FinalizedAt        *time.Time `json:"finalizedAt,omitempty"`
	LastReminderAt     *time.Time `json:"lastReminderAt,omitempty"`
	RejectedAt         *time.Time `json:"rejectedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Rating is one rater's score for one competency. Ratings are append-only.
type Rating struct {
	ID           string    `json:"id"`
	EvaluationID string    `json:"evaluationId"`
	CompetencyID string    `json:"competencyId"`
	RaterID      string    `json:"raterId"`
	RaterRole    string    `json:"raterRole"`
	Score        float64   `json:"score"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RatingInput struct {
	CompetencyID string  `json:"competencyId" validate:"required"`
	Score        float64 `json:"score"`
	Comment      string  `json:"comment" validate:"max=2000"`
}

type SubmitInput struct {
	EvaluationID string
	RaterID      string
	Role         string
	Ratings      []RatingInput
}

type ConsensusInput struct {
	EvaluationID string
	ManagerID    string
	Score        float64
	Notes        string
}

type RejectInput struct {
	EvaluationID string
	ManagerID    string
	Reason       string
}

// Detail is an evaluation with its per-competency breakdown.
type Detail struct {
	Evaluation
	Competencies  []CompetencyScore `json:"competencies"`
	ComposedScore *float64          `json:"composedScore"`
	Divergence    *float64          `json:"divergence,omitempty"`
	Threshold     float64           `json:"divergenceThreshold"`
}

type Filter struct {
	CycleID    string
	EmployeeID string
	ManagerID  string
	Status     string
}

type Summary struct {
	CycleID           string         `json:"cycleId"`
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	ByBand            map[string]int `json:"byBand"`
	AverageFinalScore *float64       `json:"averageFinalScore"`
}

type EnrollResult struct {
	Created  []Evaluation `json:"created"`
	Existing []Evaluation `json:"existing"`
}

// ReminderCandidate is an evaluation stuck waiting for consensus.
type ReminderCandidate struct {
	EvaluationID string
	EmployeeID   string
	EmployeeName string
	ManagerID    string
	PendingSince time.Time
}

// BatchSummary is the terminal report of a batch job.
type BatchSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (b BatchSummary) Items() (succeeded, failed int) {
	return b.Succeeded, b.Failed
}
