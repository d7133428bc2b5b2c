// Package respond writes JSON response bodies.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Canonical response messages.
const (
	MsgBadRequest    = "Bad Request"
	MsgUnauthorized  = "Unauthorized"
	MsgForbidden     = "Forbidden"
	MsgNotFound      = "Endpoint Not Found"
	MsgInternalError = "Internal Server Error"
)

// Message is the body shape used for every non-resource response.
type Message struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// JSON writes v with the given status and a JSON content type.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Int("status", status).Msg("encode response")
	}
}

// Msg writes {"message": msg} with the given status.
func Msg(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Message{Message: msg})
}
