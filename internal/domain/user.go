package domain

import "time"

// Role determines which parts of the system an account can reach.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEngineer Role = "ENGINEER"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEngineer
}

// User is a directory account. Email doubles as the login identifier.
// Protected marks the seeded primary admin, which can never be deleted.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	Protected    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
