// Package validate checks request bodies against the API's input schemas.
//
// Violations are reported as *Error, which unwraps to errs.ErrValidation so
// callers can map it with errors.Is.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/robalobadob/character-api/internal/errs"
)

// Schema limits.
const (
	MinNameLen     = 3
	MinPasswordLen = 6
	MaxPasswordLen = 72 // bcrypt ignores input past 72 bytes
)

// Error lists every field issue found in one body.
type Error struct {
	Issues []string
}

func (e *Error) Error() string {
	return "validation: " + strings.Join(e.Issues, "; ")
}

func (e *Error) Unwrap() error { return errs.ErrValidation }

func (e *Error) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

func (e *Error) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Issues returns the field issues carried by err, if it is a validation error.
func Issues(err error) []string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

// Decode reads exactly one JSON value from r into v. Malformed JSON, wrong
// field types and trailing data are validation errors.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &Error{Issues: []string{"body: required"}}
		}
		return &Error{Issues: []string{"body: " + err.Error()}}
	}
	if dec.More() {
		return &Error{Issues: []string{"body: unexpected data after JSON value"}}
	}
	return nil
}

// Credentials is the register/login body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires a well-formed email and a 6–72 character password.
func (c Credentials) Validate() error {
	e := &Error{}
	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		e.add("email: required")
	case !isEmail(email):
		e.add("email: invalid address")
	}
	switch n := utf8.RuneCountInString(c.Password); {
	case c.Password == "":
		e.add("password: required")
	case n < MinPasswordLen:
		e.add("password: must be at least %d characters", MinPasswordLen)
	case len(c.Password) > MaxPasswordLen:
		e.add("password: must be at most %d bytes", MaxPasswordLen)
	}
	return e.orNil()
}

// isEmail accepts a bare addr-spec (no display name, no angle brackets).
func isEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && a.Name == ""
}

// CharacterInput is the create/update character body.
type CharacterInput struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

// Validate requires name and lastName of at least three characters.
func (c CharacterInput) Validate() error {
	e := &Error{}
	checkName(e, "name", c.Name)
	checkName(e, "lastName", c.LastName)
	if c.ID < 0 {
		e.add("id: must be positive")
	}
	return e.orNil()
}

func checkName(e *Error, field, v string) {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < MinNameLen {
		e.add("%s: must be at least %d characters", field, MinNameLen)
	}
}
