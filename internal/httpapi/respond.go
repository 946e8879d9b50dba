package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON writes a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeOK writes a success envelope.
func writeOK(w http.ResponseWriter, body map[string]interface{}) {
	if body == nil {
		body = map[string]interface{}{}
	}
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// writeError writes a failure envelope. The message is always a structured
// string, never a stack trace.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
