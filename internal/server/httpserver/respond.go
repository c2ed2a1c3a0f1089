package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gundaabinav333/authshell/internal/infra/buildinfo"
)

// WriteJSON writes v as a JSON body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the shape of error responses.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError writes {"success":false,"message":msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Message: msg})
}

// Health answers liveness probes with the build version.
func Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": buildinfo.Get().Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
}
