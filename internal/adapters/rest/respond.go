package rest

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/worker"
)

const (
	errCodeInvalidRequest = "INVALID_REQUEST"
	errCodeNotFound       = "NOT_FOUND"
	errCodeEmptyCorpus    = "EMPTY_CORPUS"
	errCodeQueueFull      = "QUEUE_FULL"
	errCodeNotReady       = "NOT_READY"
	errCodeInternal       = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN rest: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps core errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidSelector),
		errors.Is(err, domain.ErrUnknownComposer),
		errors.Is(err, domain.ErrNoComposers),
		errors.Is(err, domain.ErrInvalidComposer):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidRequest)
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrResourceNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrEmptyCorpus),
		errors.Is(err, domain.ErrNotEnoughTokens):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeEmptyCorpus)
	case errors.Is(err, worker.ErrQueueFull):
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeQueueFull)
	default:
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), errCodeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
