package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"forge3d/internal/generation"
	"forge3d/internal/genapi"
	"forge3d/internal/history"
	"forge3d/internal/modelstore"
	"forge3d/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known domain errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case generation.IsValidation(err):
		return http.StatusBadRequest
	case generation.IsBusy(err), errors.Is(err, generation.ErrCanceled):
		return http.StatusConflict
	case history.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, modelstore.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, modelstore.ErrBundled), errors.Is(err, os.ErrNotExist):
		return http.StatusBadRequest
	case generation.IsJobFailed(err), genapi.IsStatusError(err), genapi.IsTransportError(err), genapi.IsDecodeError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
