package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"pricewatch/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// parsePagination reads the skip and limit query parameters, falling back to
// the defaults when absent, malformed or negative.
func parsePagination(r *http.Request) (skip, limit int) {
	skip = defaultSkip
	limit = defaultLimit

	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			skip = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			limit = v
		}
	}

	return skip, limit
}

// parseBoolParam reads a boolean query parameter, falling back to the
// default when absent or malformed.
func parseBoolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// parseUUIDParam reads an optional UUID query parameter. Absent or malformed
// values return the zero UUID, which repositories treat as "no filter".
func parseUUIDParam(r *http.Request, name string) uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil
	}
	v, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return v
}

// pathUUID parses a UUID path parameter, answering 400 itself when the value
// does not parse. The boolean reports whether the handler should continue.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s format", name))
		return uuid.Nil, false
	}
	return id, true
}
