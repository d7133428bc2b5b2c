// internal/auth/middleware.go
//
// HTTP middleware for bearer-token authentication and role authorization.
//   - Require:   401 when no token, 403 when revoked or invalid; attaches Identity.
//   - Optional:  attaches Identity when the token is usable; never rejects.
//   - Authorize: 403 unless the attached Identity has one of the allowed roles.

package auth

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/character-api/internal/respond"
	"github.com/robalobadob/character-api/internal/store"
)

// Authenticator verifies bearer tokens against the issuer and the revocation set.
type Authenticator struct {
	issuer  *Issuer
	revoked store.TokenStore
}

// NewAuthenticator wires an Issuer and a TokenStore.
func NewAuthenticator(issuer *Issuer, revoked store.TokenStore) *Authenticator {
	return &Authenticator{issuer: issuer, revoked: revoked}
}

// Require enforces a valid, unrevoked access token and injects its Identity.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := BearerToken(r)
		if tok == "" {
			respond.Msg(w, http.StatusUnauthorized, respond.MsgUnauthorized)
			return
		}

		revoked, err := a.revoked.IsRevoked(r.Context(), tok)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("revocation lookup")
			respond.Msg(w, http.StatusInternalServerError, respond.MsgInternalError)
			return
		}
		if revoked {
			respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
			return
		}

		id, err := a.issuer.Verify(tok)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("token rejected")
			respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional decorates the request with an Identity when a usable token is present.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := BearerToken(r); tok != "" {
			revoked, err := a.revoked.IsRevoked(r.Context(), tok)
			if err == nil && !revoked {
				if id, err := a.issuer.Verify(tok); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize admits only identities whose role is in roles. The role set is
// fixed when the middleware is built. Must run after Require.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok || id.Role == "" {
				respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
