package http

import (
	"log/slog"
	"net/http"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/resilience"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError translates the domain error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	requestID := requestIDFrom(r.Context())

	if status >= http.StatusInternalServerError {
		slog.Error("request_failed", "method", r.Method, "path", r.URL.Path, "status", status,
			"request_id", requestID, "error", err)
	} else {
		slog.Warn("request_rejected", "method", r.Method, "path", r.URL.Path, "status", status,
			"request_id", requestID, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: publicMessage(err, status), RequestID: requestID})
}

func statusFor(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrCourseNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary), resilience.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps backend details out of 5xx bodies.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
