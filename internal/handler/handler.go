// Package handler implements the JSON API. Handlers validate input,
// call the active store, broadcast change notifications, and map errors
// to JSON bodies. Mutations that support offline capture are diverted to
// the pending-action queue while connectivity is down.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func idParam(r *http.Request) string {
	return r.PathValue("id")
}
