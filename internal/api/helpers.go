package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"questioner.dev/reference-db/internal/core"
	"questioner.dev/reference-db/internal/logger"
)

// maxBodyBytes caps JSON request bodies at 10 MiB.
const maxBodyBytes = 10 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      *int64 `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, errorResponse{Error: msg})
}

// writeServiceError maps core error kinds to status codes. Storage failures become
// a 500 carrying generic in production and the error text otherwise.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var (
		validation *core.ValidationError
		conflict   *core.ConflictError
		missing    *core.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &conflict):
		writeError(w, http.StatusBadRequest, conflict.Message)
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, missing.Message)
	default:
		logger.With(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("%s: %v", generic, err)
		msg := err.Error()
		if h.production {
			msg = generic
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads a size-capped JSON body into dst and reports false after
// answering 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// questionID parses the {id} path parameter; anything but a positive integer is rejected.
func questionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid question ID")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return v
}
