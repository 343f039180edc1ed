package model

import "time"

// Role values stored in users.role. Registration always produces a
// client; only an admin can create another admin.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Roles lists every accepted role value.
var Roles = []string{RoleAdmin, RoleClient}

// User mirrors the `users` table. PasswordHash must never be
// serialized; response types strip it before encoding.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}
