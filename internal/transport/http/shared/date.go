package shared

import (
	"net/http"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD. Bare dates are UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dayLayout, value)
}

// QueryDate reads an optional date query parameter, recording an issue
// when it is malformed.
func QueryDate(r *http.Request, v *Validator, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parsed, ok := v.Date(name, raw)
	if !ok {
		return nil
	}
	return &parsed
}
