// internal/httpserver/routes_characters.go
//
// HTTP routes for the character resource. Every route requires a valid
// bearer token; reads need role user or admin, writes need admin.
//   - GET    /characters      → list (insertion order)
//   - GET    /characters/{id} → one character
//   - POST   /characters      → create (201)
//   - PUT    /characters/{id} → replace (body re-validated)
//   - DELETE /characters/{id} → delete

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/character-api/internal/auth"
	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
	"github.com/robalobadob/character-api/internal/respond"
	"github.com/robalobadob/character-api/internal/validate"
)

const (
	msgCharacterNotFound = "Character not found"
	msgCharacterExists   = "Character already exists"
	msgCharacterDeleted  = "Character deleted"
	msgInvalidID         = "Invalid character id"
)

// mountCharacters registers all /characters routes.
func (s *Server) mountCharacters() {
	read := auth.Authorize(characterReadRoles...)
	write := auth.Authorize(characterWriteRoles...)

	s.r.Route("/characters", func(r chi.Router) {
		r.Use(s.authn.Require)

		r.With(read).Get("/", s.handleListCharacters)
		r.With(read).Get("/{id}", s.handleGetCharacter)
		r.With(write).Post("/", s.handleCreateCharacter)
		r.With(write).Put("/{id}", s.handleUpdateCharacter)
		r.With(write).Delete("/{id}", s.handleDeleteCharacter)
	})
}

// characterID parses the {id} path parameter; ok is false (and a 400 has been
// written) when it is not a positive integer.
func characterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Msg(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

func toCharacter(in validate.CharacterInput) model.Character {
	return model.Character{
		ID:       in.ID,
		Name:     strings.TrimSpace(in.Name),
		LastName: strings.TrimSpace(in.LastName),
	}
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	list, err := s.characters.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	c, err := s.characters.Get(r.Context(), id)
	if errors.Is(err, errs.ErrNotFound) {
		respond.Msg(w, http.StatusNotFound, msgCharacterNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var body validate.CharacterInput
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.characters.Create(r.Context(), toCharacter(body))
	if errors.Is(err, errs.ErrConflict) {
		respond.Msg(w, http.StatusConflict, msgCharacterExists)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	var body validate.CharacterInput
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.characters.Update(r.Context(), id, toCharacter(body))
	if errors.Is(err, errs.ErrNotFound) {
		respond.Msg(w, http.StatusNotFound, msgCharacterNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := characterID(w, r)
	if !ok {
		return
	}
	err := s.characters.Delete(r.Context(), id)
	if errors.Is(err, errs.ErrNotFound) {
		respond.Msg(w, http.StatusNotFound, msgCharacterNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.Msg(w, http.StatusOK, msgCharacterDeleted)
}
