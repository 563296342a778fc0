package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account in the domain layer.
// PasswordHash is a bcrypt hash and must never leave the backend.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// SafeUser is the externally visible projection of a User.
type SafeUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// Safe returns the projection of the user without credentials.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
