package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// ErrorResponse is the body written for every non-validation error.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondError writes {"status": "<STATUS_NAME>", "message": message}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Status: StatusName(status), Message: message})
}

// StatusName converts an HTTP status code to its upper snake case name, e.g. 404 -> NOT_FOUND.
func StatusName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return strconv.Itoa(status)
	}
	text = strings.ReplaceAll(text, "-", " ")
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// ParseInt64PathValue extracts a positive integer path parameter. Writes a 400 response and returns false on failure.
func ParseInt64PathValue(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (int64, bool) {
	raw := r.PathValue(key)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, raw))
		return 0, false
	}
	return value, true
}
