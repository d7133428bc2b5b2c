// internal/httpserver/routes_auth.go
//
// HTTP routes for account management. Exposed under /auth:
//   - POST /auth/register → create a user (201), 409 if the email is taken
//   - POST /auth/login    → issue access + refresh tokens (200), 401 on bad credentials
//   - POST /auth/logout   → revoke the bearer token and clear the stored refresh token
//   - GET  /auth/me       → the authenticated identity
//
// Anything else under /auth answers 404 "Endpoint Not Found".

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/character-api/internal/auth"
	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
	"github.com/robalobadob/character-api/internal/respond"
	"github.com/robalobadob/character-api/internal/store"
	"github.com/robalobadob/character-api/internal/validate"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgLoggedOut          = "Logged out"
)

// tokenPair is the login response body.
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// mountAuth registers all /auth routes.
func (s *Server) mountAuth() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.authn.Optional).Post("/logout", s.handleLogout)
		r.With(s.authn.Require).Get("/me", s.handleMe)
	})
}

// handleRegister validates the body and creates a user. Emails listed as
// admin get the admin role; everyone else is a plain user.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body validate.Credentials
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	role := model.RoleUser
	if s.adminEmail(body.Email) {
		role = model.RoleAdmin
	}
	u, err := s.users.Create(r.Context(), body.Email, body.Password, role)
	if errors.Is(err, errs.ErrConflict) {
		respond.Msg(w, http.StatusConflict, msgUserExists)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("user", u.ID).Str("role", u.Role).Msg("user registered")
	respond.JSON(w, http.StatusCreated, u)
}

// handleLogin checks credentials and issues an access/refresh token pair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body validate.Credentials
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.FindByEmail(r.Context(), body.Email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	if err != nil || !store.ValidatePassword(u, body.Password) {
		respond.Msg(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	access, err := s.issuer.IssueAccess(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	refresh, err := s.issuer.IssueRefresh(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := s.users.SetRefreshToken(r.Context(), u.Email, refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		respond.Msg(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	respond.JSON(w, http.StatusOK, tokenPair{AccessToken: access, RefreshToken: refresh})
}

// handleLogout revokes the presented token. When the token still identified a
// user, that user's stored refresh token is cleared too; failing to find the
// user is a 403. Without a bearer token there is nothing to log out (404).
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok := auth.BearerToken(r)
	if tok == "" {
		notFound(w, r)
		return
	}
	if err := s.tokens.Revoke(r.Context(), tok); err != nil {
		writeError(w, r, err)
		return
	}

	if id, ok := auth.IdentityFrom(r.Context()); ok {
		cleared, err := s.users.SetRefreshToken(r.Context(), id.Email, "")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !cleared {
			respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
			return
		}
	}
	respond.Msg(w, http.StatusOK, msgLoggedOut)
}

// handleMe echoes the authenticated identity.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Msg(w, http.StatusUnauthorized, respond.MsgUnauthorized)
		return
	}
	respond.JSON(w, http.StatusOK, id)
}
