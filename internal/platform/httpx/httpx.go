// internal/platform/httpx/httpx.go
package httpx

import (
	"encoding/json"
	"net/http"

	"phstore/internal/platform/apperr"
)

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError maps a service error to its HTTP status and writes the
// client-safe message. Internal causes never leave the process.
func RespondError(w http.ResponseWriter, err error) {
	RespondJSON(w, apperr.StatusCode(err), map[string]string{
		"error": apperr.MessageOf(err),
		"kind":  string(apperr.KindOf(err)),
	})
}
