// Package httpapi is the request boundary (spec.md §4.C13): it maps
// transport-level JSON to component calls, validates field shapes, and
// translates component errors to HTTP statuses per spec.md §7.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/beadhub/beadhub/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

var codeStatus = map[apperr.Code]int{
	apperr.Validation:         http.StatusBadRequest,
	apperr.Unauthenticated:    http.StatusUnauthorized,
	apperr.Forbidden:          http.StatusForbidden,
	apperr.NotFound:           http.StatusNotFound,
	apperr.Conflict:           http.StatusConflict,
	apperr.PreconditionFailed: http.StatusPreconditionFailed,
	apperr.RateLimited:        http.StatusTooManyRequests,
	apperr.Unavailable:        http.StatusServiceUnavailable,
	apperr.Internal:           http.StatusInternalServerError,
}

type errorBody struct {
	Detail string         `json:"detail"`
	Code   apperr.Code    `json:"code,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// writeError maps a component error to the taxonomy's HTTP status
// (spec.md §7). Untyped errors default to internal/500 and are logged
// with their cause; typed client errors (4xx) are not.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled internal error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error", Code: apperr.Internal})
		return
	}
	status, ok := codeStatus[e.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		log.Error().Err(e).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Detail: e.Detail, Code: e.Code, Fields: e.Fields})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ValidationError("malformed JSON body: %v", err)
	}
	return nil
}

// cursor encodes/decodes the opaque "(last_sort_key, last_id)" pagination
// token (spec.md §4.C13). The mail inbox is the only list endpoint that
// pages by it; the other list endpoints do not accept a cursor.
type cursor struct {
	SortKey string `json:"k"`
	ID      string `json:"i"`
}

func encodeCursor(c cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (cursor, bool) {
	var c cursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, false
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, false
	}
	return c, true
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 50
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 50
	}
	if n > 500 {
		return 500
	}
	return n
}
