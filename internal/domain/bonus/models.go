package bonus

import "time"

type Calculation struct {
	ID                string     `json:"id"`
	CycleID           string     `json:"cycleId"`
	EmployeeID        string     `json:"employeeId"`
	EmployeeName      string     `json:"employeeName,omitempty"`
	EvaluationID      string     `json:"evaluationId"`
	FinalScore        float64    `json:"finalScore"`
	PerformanceBand   string     `json:"performanceBand"`
	AppliedMultiplier float64    `json:"appliedMultiplier"`
	BaseSalary        float64    `json:"baseSalary"`
	Eligible          bool       `json:"eligible"`
	GoalsTotal        int        `json:"goalsTotal"`
	GoalsCompleted    int        `json:"goalsCompleted"`
	Amount            float64    `json:"bonusAmount"`
	Status            string     `json:"status"`
	CalculatedAt      time.Time  `json:"calculatedAt"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

type ItemError struct {
	EmployeeID string `json:"employeeId"`
	Error      string `json:"error"`
}

type BatchResult struct {
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Errors    []ItemError `json:"errors"`
}

func (r BatchResult) Items() (succeeded, failed int) {
	return r.Succeeded, r.Failed
}
