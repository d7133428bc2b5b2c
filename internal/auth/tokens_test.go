package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/character-api/internal/model"
)

var testUser = model.User{ID: "user-1", Email: "ann@example.com", Role: model.RoleAdmin}

func newTestIssuer() *Issuer {
	return NewIssuer([]byte("test-jwt-secret"), time.Hour, 24*time.Hour)
}

func TestIssuer_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	tok, err := iss.IssueAccess(testUser)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "user-1", Email: "ann@example.com", Role: model.RoleAdmin}, id)
}

func TestIssuer_AccessClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	before := time.Now()
	tok, err := iss.IssueAccess(testUser)
	require.NoError(t, err)

	var claims AccessClaims
	_, err = jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) { return iss.secret, nil })
	require.NoError(t, err)

	assert.Equal(t, TypeAccess, claims.Type)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, before.Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestIssuer_RefreshDiffersAndIsRejectedAsAccess(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	access, err := iss.IssueAccess(testUser)
	require.NoError(t, err)
	refresh, err := iss.IssueRefresh(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	var claims RefreshClaims
	_, err = jwt.ParseWithClaims(refresh, &claims, func(*jwt.Token) (any, error) { return iss.secret, nil })
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TypeRefresh, claims.Type)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 2*time.Second)

	_, err = iss.Verify(refresh)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestIssuer_TokensAreUniquePerIssue(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	a, err := iss.IssueAccess(testUser)
	require.NoError(t, err)
	b, err := iss.IssueAccess(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssuer_VerifyRejects(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	otherSecret, err := NewIssuer([]byte("other-secret"), time.Hour, time.Hour).IssueAccess(testUser)
	require.NoError(t, err)

	expired, err := NewIssuer(iss.secret, -time.Minute, time.Hour).IssueAccess(testUser)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: "user-1",
		Role:   model.RoleAdmin,
		Type:   TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: "user-1",
		Role:   model.RoleAdmin,
		Type:   TypeAccess,
	}).SignedString(iss.secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: otherSecret},
		{name: "expired", token: expired},
		{name: "alg none", token: unsigned},
		{name: "no expiry", token: noExp},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := iss.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}
