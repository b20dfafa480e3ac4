// Package response writes the JSON bodies the API speaks: every reply is an
// object, errors always carry a "msg" field.
package response

import (
	"encoding/json"
	"net/http"
)

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	write(w, status, body)
}

// Msg sends {"msg": ...} with the given status.
func Msg(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]string{"msg": msg})
}

// BadRequest sends a 400 with a message.
func BadRequest(w http.ResponseWriter, msg string) {
	Msg(w, http.StatusBadRequest, msg)
}

// Forbidden sends a 403 with a message.
func Forbidden(w http.ResponseWriter, msg string) {
	Msg(w, http.StatusForbidden, msg)
}

// NotFound sends a 404 with a message.
func NotFound(w http.ResponseWriter, msg string) {
	Msg(w, http.StatusNotFound, msg)
}

// ServerError sends a 500 echoing the underlying error message, matching
// the upstream API contract (internal detail in responses is accepted here).
func ServerError(w http.ResponseWriter, err error) {
	Msg(w, http.StatusInternalServerError, err.Error())
}

// ValidationError sends a 400 with field-level error messages.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, map[string]interface{}{
		"msg":    "Validation failed",
		"errors": errs,
	})
}
