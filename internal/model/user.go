package model

import "time"

// Roles stored in the users.role column. Only ADMIN may create accounts
// with an elevated (non-CLIENT) role.
const (
	RoleAdmin  = "ADMIN"
	RoleAgent  = "AGENT"
	RoleClient = "CLIENT"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleAgent || s == RoleClient
}

// User mirrors the 'users' table. PasswordHash is never serialized;
// handlers expose users through response types that omit it.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Phone        *string   `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
