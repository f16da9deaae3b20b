package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pawws/pawws/internal/ctxkeys"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/service"
)

const maxJSONBody = 1 << 20

// errorResponse is the {"detail": "..."} body every API error uses.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps a service error to its status code. Anything unexpected is
// logged at error level (and so reaches Sentry) and answered with a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		writeDetail(w, status, "Internal server error")
		return
	}

	detail := err.Error()
	if errors.Is(err, service.ErrInvalidCredentials) {
		detail = "Incorrect email or password"
	}
	writeDetail(w, status, detail)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrPaymentQRNotSet):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCost),
		errors.Is(err, service.ErrMissingEvidence),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInactiveUser):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrDirectContributionsDisabled):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrDonationRejected),
		errors.Is(err, service.ErrMilestoneNotFunded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pagination reads the skip and limit query parameters.
func pagination(r *http.Request) (int, int) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return skip, limit
}

// streamBlob copies a stored blob to the response.
func streamBlob(w http.ResponseWriter, r *http.Request, rc io.ReadCloser, contentType string) {
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, err := io.Copy(w, rc)
	if err != nil {
		slog.Warn("failed to stream blob", "error", err, "path", r.URL.Path)
	}
}

// NotFound answers unmatched routes in the API's error format.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}
