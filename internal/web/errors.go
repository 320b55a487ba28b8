package web

// errors.go provides unified error response handling for the API.
//
// Every error is logged with full technical detail server-side and returned
// to clients as a stable machine-readable code plus a human-readable message
// with an action suggestion.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/r2x-tools/reedsmap/internal/harmonize"
)

// Error codes returned in API responses. Stable; clients switch on them.
const (
	codeDatasetNotFound = "MAP001"
	codeInvalidMapping  = "MAP002"
	codeFileTooLarge    = "FILE001"
	codeInvalidCSV      = "FILE002"
	codeBusy            = "JOB001"
	codeRateLimited     = "RATE001"
	codeInternal        = "ERR000"
)

// ErrDatasetNotFound is returned when a dataset key has no mapping entry.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// UserMessage is the client-facing rendering of an error.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// mapError converts internal errors to user-facing messages.
func mapError(err error) UserMessage {
	// http.MaxBytesReader trips mid-read, so the size limit can surface as a
	// wrapped read error rather than our own sentinel.
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, ErrDatasetNotFound):
		return UserMessage{
			Code:    codeDatasetNotFound,
			Message: "No mapping entry exists for this dataset.",
			Action:  "List /api/datasets for the available keys.",
		}
	case errors.Is(err, ErrFileTooLarge), errors.As(err, &maxBytes):
		return UserMessage{
			Code:    codeFileTooLarge,
			Message: "The uploaded file exceeds the maximum allowed size.",
			Action:  "Split the file or raise HARMONIZE_MAX_FILE_SIZE.",
		}
	case errors.Is(err, harmonize.ErrNotCSV):
		return UserMessage{
			Code:    codeInvalidCSV,
			Message: "This dataset is not backed by a CSV file and cannot be harmonized.",
			Action:  "Only datasets whose fname ends in .csv support harmonization.",
		}
	case errors.Is(err, harmonize.ErrBusy):
		return UserMessage{
			Code:    codeBusy,
			Message: "All harmonization slots are busy.",
			Action:  "Retry after a short delay.",
		}
	default:
		return UserMessage{
			Code:    codeInternal,
			Message: "An internal error occurred.",
			Action:  "Retry; if the problem persists check the server logs.",
		}
	}
}

// respondError logs the technical error and writes the mapped JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondJSON encodes v as JSON. Encoding errors are logged since headers
// are already sent.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
