// internal/model/model.go
//
// Domain records shared by the stores, the auth layer and the HTTP handlers.
//   - User: registered account (email is the unique key).
//   - Character: the CRUD resource exposed under /characters.

package model

import "time"

// Roles carried on User records and in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account.
// PasswordHash and RefreshToken are never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Character is a named character record.
type Character struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}
