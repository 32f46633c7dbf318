package timeclock

import "time"

type Record struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	Date          time.Time  `json:"date"`
	ClockIn       *time.Time `json:"clockIn,omitempty"`
	ClockOut      *time.Time `json:"clockOut,omitempty"`
	BreakMinutes  int        `json:"breakMinutes"`
	WorkedMinutes int        `json:"workedMinutes"`
	Source        string     `json:"source"`
}

// RecordInput is one imported time clock entry. WorkedMinutes wins over
// the clock in/out pair when both are given.
type RecordInput struct {
	EmployeeID    string `json:"employeeId"`
	Date          string `json:"date"`
	ClockIn       string `json:"clockIn,omitempty"`
	ClockOut      string `json:"clockOut,omitempty"`
	WorkedMinutes *int   `json:"workedMinutes,omitempty"`
	BreakMinutes  int    `json:"breakMinutes,omitempty"`
}

type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
}

type Activity struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	Date        time.Time `json:"date"`
	Minutes     int       `json:"minutes"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ActivityInput struct {
	EmployeeID  string `json:"employeeId"`
	Date        string `json:"date"`
	Minutes     int    `json:"minutes"`
	Description string `json:"description"`
}

type Discrepancy struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	EmployeeName         string     `json:"employeeName,omitempty"`
	Date                 time.Time  `json:"date"`
	ClockMinutes         int        `json:"clockMinutes"`
	ActivityMinutes      int        `json:"activityMinutes"`
	DifferenceMinutes    int        `json:"differenceMinutes"`
	DifferencePercentage float64    `json:"differencePercentage"`
	Type                 string     `json:"discrepancyType"`
	Status               string     `json:"status"`
	Justification        string     `json:"justification,omitempty"`
	ReviewedBy           string     `json:"reviewedBy,omitempty"`
	ReviewedAt           *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

type Alert struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	Type          string     `json:"type"`
	Severity      string     `json:"severity"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	ReferenceDate time.Time  `json:"referenceDate"`
	Status        string     `json:"status"`
	ResolvedBy    string     `json:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Filter struct {
	EmployeeID    string
	From          *time.Time
	To            *time.Time
	Type          string
	Status        string
	MinPercentage float64
}

// DayTotal is the clock and activity time of one employee on one day.
type DayTotal struct {
	EmployeeID      string
	EmployeeName    string
	ManagerID       string
	ClockMinutes    int
	ActivityMinutes int
}

type Stats struct {
	From                  string         `json:"from"`
	To                    string         `json:"to"`
	TotalRecords          int            `json:"totalRecords"`
	TotalDiscrepancies    int            `json:"totalDiscrepancies"`
	CriticalDiscrepancies int            `json:"criticalDiscrepancies"`
	ByType                map[string]int `json:"byType"`
	OpenAlerts            int            `json:"openAlerts"`
}

type ItemError struct {
	EmployeeID string `json:"employeeId"`
	Error      string `json:"error"`
}

// DetectionSummary reports one run of the discrepancy detector. Skipped
// counts employees whose day was already analysed.
type DetectionSummary struct {
	Date      string      `json:"date"`
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Created   int         `json:"created"`
	Skipped   int         `json:"skipped"`
	Alerts    int         `json:"alerts"`
	Errors    []ItemError `json:"errors"`
}

func (s DetectionSummary) Items() (succeeded, failed int) {
	return s.Succeeded, s.Failed
}
