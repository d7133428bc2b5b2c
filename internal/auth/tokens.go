// internal/auth/tokens.go
//
// JWT issuance and verification (HS256, shared secret).
//   - Access tokens carry id/email/role and live AccessTTL (default 1h).
//   - Refresh tokens carry only id and live RefreshTTL (default 24h).
// Every token gets a random jti, so two tokens are never byte-identical even
// when issued for the same user within the same second.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/character-api/internal/model"
)

// Token types stored in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongTokenType is returned by Verify for refresh tokens.
var ErrWrongTokenType = errors.New("wrong token type")

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	UserID string `json:"id"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller, attached to the request context.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Issuer signs and verifies tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer constructs an Issuer for the given secret and lifetimes.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// IssueAccess signs a short-lived token embedding the user's id, email and role.
func (i *Issuer) IssueAccess(u model.User) (string, error) {
	now := i.now()
	claims := AccessClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Type:   TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssueRefresh signs a longer-lived token embedding only the user's id.
func (i *Issuer) IssueRefresh(u model.User) (string, error) {
	now := i.now()
	claims := RefreshClaims{
		UserID: u.ID,
		Type:   TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks signature, algorithm, expiry and token type, and returns the
// identity carried by an access token.
func (i *Issuer) Verify(token string) (Identity, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, err
	}
	if !tkn.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Type != TypeAccess {
		return Identity{}, fmt.Errorf("%w: %q", ErrWrongTokenType, claims.Type)
	}
	return Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}
