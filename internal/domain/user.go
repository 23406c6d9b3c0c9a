package domain

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an authentication principal.
// Corresponds to users table in PostgreSQL.
type User struct {
	UserID       int64  // PRIMARY KEY
	UserName     string
	Email        string // unique
	PasswordHash string // bcrypt
	Role         string // user | admin
	CreatedAt    time.Time
}

// IsAdmin reports whether the user passes the admin role gate.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
