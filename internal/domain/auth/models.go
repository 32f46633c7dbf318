package auth

import "time"

// UserContext is the caller identity attached to each authenticated request.
type UserContext struct {
	UserID     string
	EmployeeID string
	Role       string
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	EmployeeID   string     `json:"employeeId,omitempty"`
	Active       bool       `json:"active"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	PasswordHash string     `json:"-"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
