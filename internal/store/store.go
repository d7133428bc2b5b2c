// internal/store/store.go
//
// Persistence interfaces for the three pieces of server state:
//   - TokenStore:     set of revoked bearer tokens (never shrinks).
//   - UserStore:      users keyed by email, plus their current refresh token.
//   - CharacterStore: characters keyed by numeric id, listed in insertion order.
//
// Implementations live in this package: memory (default), SQLite, and Redis
// (revoked tokens only). Missing records surface as errs.ErrNotFound and
// duplicate keys as errs.ErrConflict, wrapped with context.

package store

import (
	"context"

	"github.com/robalobadob/character-api/internal/crypto"
	"github.com/robalobadob/character-api/internal/model"
)

// TokenStore records revoked bearer tokens.
type TokenStore interface {
	// Revoke adds token to the set. Revoking twice is a no-op.
	Revoke(ctx context.Context, token string) error

	// IsRevoked reports whether token was ever revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// UserStore owns user records.
type UserStore interface {
	// Create hashes password and stores a new user.
	// Returns errs.ErrConflict if the email is already registered.
	Create(ctx context.Context, email, password, role string) (model.User, error)

	// FindByEmail returns errs.ErrNotFound if no user has that email.
	FindByEmail(ctx context.Context, email string) (model.User, error)

	// SetRefreshToken replaces the stored refresh token.
	// Returns false if the user does not exist.
	SetRefreshToken(ctx context.Context, email, token string) (bool, error)
}

// CharacterStore owns character records.
type CharacterStore interface {
	List(ctx context.Context) ([]model.Character, error)
	Get(ctx context.Context, id int64) (model.Character, error)

	// Create assigns a fresh id and inserts c. If c.ID is set and already
	// taken, the store is left untouched and c is returned unchanged with
	// errs.ErrConflict.
	Create(ctx context.Context, c model.Character) (model.Character, error)

	// Update replaces the record wholesale; errs.ErrNotFound if absent.
	Update(ctx context.Context, id int64, c model.Character) (model.Character, error)

	// Delete removes the record; errs.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

// ValidatePassword compares plaintext with the user's stored bcrypt hash.
func ValidatePassword(u model.User, plaintext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return crypto.CheckPassword(u.PasswordHash, plaintext)
}
