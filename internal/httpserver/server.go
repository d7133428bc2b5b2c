// internal/httpserver/server.go
//
// HTTP server wiring for the character API.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, timeouts,
//     CORS, JSON content type).
//   - Public endpoints: "/health".
//   - Auth endpoints under /auth (register, login, logout, me).
//   - Character CRUD under /characters (bearer token + role required).
//
// Notes:
//   - Every response body is JSON, including 404/405 and recovered panics.
//   - Unknown paths and unsupported methods both answer 404 "Endpoint Not Found".
//   - Errors that map to no known sentinel become a generic 500; details are
//     logged, never sent to the client.

package httpserver

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/character-api/internal/auth"
	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
	"github.com/robalobadob/character-api/internal/respond"
	"github.com/robalobadob/character-api/internal/store"
	"github.com/robalobadob/character-api/internal/validate"
)

// maxBodyBytes bounds request bodies read by the JSON decoders.
const maxBodyBytes = 1 << 20

// Roles allowed on character routes.
var (
	characterReadRoles  = []string{model.RoleUser, model.RoleAdmin}
	characterWriteRoles = []string{model.RoleAdmin}
)

// Deps are the collaborators a Server needs. All fields except AdminEmail
// are required.
type Deps struct {
	Tokens     store.TokenStore
	Users      store.UserStore
	Characters store.CharacterStore
	Issuer     *auth.Issuer

	// AdminEmail decides which registering emails get the admin role.
	AdminEmail func(email string) bool

	Logger         zerolog.Logger
	CORSOrigin     string
	RequestTimeout time.Duration
}

// Server bundles router, stores and the token issuer.
type Server struct {
	r          *chi.Mux
	tokens     store.TokenStore
	users      store.UserStore
	characters store.CharacterStore
	issuer     *auth.Issuer
	authn      *auth.Authenticator
	adminEmail func(string) bool
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:          chi.NewRouter(),
		tokens:     d.Tokens,
		users:      d.Users,
		characters: d.Characters,
		issuer:     d.Issuer,
		authn:      auth.NewAuthenticator(d.Issuer, d.Tokens),
		adminEmail: d.AdminEmail,
	}
	if s.adminEmail == nil {
		s.adminEmail = func(string) bool { return false }
	}
	origin := d.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)           // add X-Request-ID
	s.r.Use(chimw.RealIP)              // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(d.Logger)) // request-scoped logger
	s.r.Use(requestIDLogger)
	s.r.Use(accessLog())
	s.r.Use(recoverJSON)             // panics → 500 JSON
	s.r.Use(chimw.Timeout(timeout))  // bound handler time
	s.r.Use(chimw.StripSlashes)      // /characters/ == /characters
	s.r.Use(permissiveCORS(origin))  // preflight + headers
	s.r.Use(jsonContentType)         // default JSON responses

	// JSON 404 for unknown routes and unsupported methods alike.
	s.r.NotFound(notFound)
	s.r.MethodNotAllowed(notFound)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.mountAuth()
	s.mountCharacters()

	return s
}

// Handler returns the root handler to serve.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// permissiveCORS allows any method the API serves from origin and answers
// preflight requests directly.
func permissiveCORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin != "*" {
				h.Set("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDLogger tags the request logger with chi's request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog emits one line per request, leveled by status class.
func accessLog() func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		l := hlog.FromRequest(r)
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", size).
			Dur("duration", d).
			Msg("request completed")
	})
}

// recoverJSON turns a handler panic into a generic 500 JSON body.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			respond.Msg(w, http.StatusInternalServerError, respond.MsgInternalError)
		}()
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.Msg(w, http.StatusNotFound, respond.MsgNotFound)
}

// ------------------------------- helpers -----------------------------------

// validatable is implemented by request bodies in package validate.
type validatable interface{ Validate() error }

// decodeBody reads a JSON body into v and runs its schema check.
func decodeBody(w http.ResponseWriter, r *http.Request, v validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validate.Decode(r.Body, v); err != nil {
		return err
	}
	return v.Validate()
}

// writeError maps err onto the error taxonomy. Unknown errors are logged and
// answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		respond.JSON(w, http.StatusBadRequest, respond.Message{
			Message: respond.MsgBadRequest,
			Errors:  validate.Issues(err),
		})
	case errors.Is(err, errs.ErrUnauthenticated):
		respond.Msg(w, http.StatusUnauthorized, respond.MsgUnauthorized)
	case errors.Is(err, errs.ErrForbidden):
		respond.Msg(w, http.StatusForbidden, respond.MsgForbidden)
	case errors.Is(err, errs.ErrNotFound):
		respond.Msg(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, errs.ErrConflict):
		respond.Msg(w, http.StatusConflict, "Conflict")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled error")
		respond.Msg(w, http.StatusInternalServerError, respond.MsgInternalError)
	}
}
