package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrTooManyAttempts = errors.New("too many login attempts")

// KnownRole reports whether role names one of the portal's dashboards.
func KnownRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User models an authenticated actor in the portal. Accounts with the "user"
// role belong to students and carry the student linkage fields; admin
// accounts leave them empty.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	StudentID     string    `json:"student_id,omitempty"`
	StudentIDCode string    `json:"student_id_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
