package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tiffin-app-go/internal/clock"
)

// ParseDate parses a YYYY-MM-DD value. The error is safe to show to callers.
func ParseDate(value string) (time.Time, error) {
	return clock.ParseDate(strings.TrimSpace(value))
}

// URLUUID reads a uuid path parameter, writing a 400 when it is malformed.
func URLUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if _, err := uuid.Parse(value); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid "+name)
		return "", false
	}
	return value, true
}

// QueryDate reads an optional date query parameter, defaulting to fallback.
func QueryDate(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return fallback, true
	}
	parsed, err := ParseDate(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid "+name)
		return time.Time{}, false
	}
	return parsed, true
}

func FormatDate(t time.Time) string {
	return clock.FormatDate(t)
}
