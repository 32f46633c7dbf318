package goal

import "time"

type Goal struct {
	ID              string      `json:"id"`
	CycleID         string      `json:"cycleId"`
	EmployeeID      string      `json:"employeeId,omitempty"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Type            string      `json:"type"`
	Category        string      `json:"category"`
	Unit            string      `json:"measurementUnit,omitempty"`
	TargetValue     *float64    `json:"targetValue"`
	CurrentValue    float64     `json:"currentValue"`
	Progress        float64     `json:"progress"`
	Weight          int         `json:"weight"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	Status          string      `json:"status"`
	BonusEligible   bool        `json:"bonusEligible"`
	BonusPercentage *float64    `json:"bonusPercentage,omitempty"`
	Smart           SmartResult `json:"smart"`
	CreatedBy       string      `json:"createdBy,omitempty"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// SmartResult scores a goal on the five SMART criteria, 20 points each.
type SmartResult struct {
	Specific   bool     `json:"isSpecific"`
	Measurable bool     `json:"isMeasurable"`
	Achievable bool     `json:"isAchievable"`
	Relevant   bool     `json:"isRelevant"`
	TimeBound  bool     `json:"isTimeBound"`
	Score      int      `json:"score"`
	Feedback   []string `json:"feedback,omitempty"`
}

type CreateInput struct {
	CycleID         string
	EmployeeID      string
	Title           string
	Description     string
	Type            string
	Category        string
	Unit            string
	TargetValue     *float64
	Weight          int
	StartDate       time.Time
	EndDate         time.Time
	BonusEligible   bool
	BonusPercentage *float64
	CreatedBy       string
}

type ProgressInput struct {
	GoalID       string
	CurrentValue float64
	Note         string
	UpdatedBy    string
}

type ProgressUpdate struct {
	ID            string    `json:"id"`
	GoalID        string    `json:"goalId"`
	PreviousValue float64   `json:"previousValue"`
	NewValue      float64   `json:"newValue"`
	Progress      float64   `json:"progress"`
	Note          string    `json:"note,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Filter narrows goal listings. With EmployeeID set, organizational goals
// of the same cycle are included because they apply to everyone.
type Filter struct {
	EmployeeID string
	CycleID    string
	Status     string
	Type       string
	Category   string
}

// Eligibility is the goal side of a bonus decision.
type Eligibility struct {
	Rule      string `json:"rule"`
	Total     int    `json:"bonusGoals"`
	Completed int    `json:"completedGoals"`
	Eligible  bool   `json:"eligible"`
}

type BatchSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (b BatchSummary) Items() (succeeded, failed int) {
	return b.Succeeded, b.Failed
}
