package notifications

import "time"

// Intent is a notification the domain wants delivered. Body is HTML.
type Intent struct {
	EmployeeID string
	Type       string
	Title      string
	Body       string
}

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
