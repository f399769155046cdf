package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API calls and as an HTML page otherwise
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status code is chosen from the error's type
//  4. Error is mapped via core.MapError to get user-friendly message
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered in appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/core"
	"github.com/JonMunkholm/sheetview/internal/logging"
	"github.com/JonMunkholm/sheetview/internal/transfer"
)

// errNoFile is reported when an upload form has no file part.
var errNoFile = errors.New("no file provided")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	var (
		ve *codec.ValidationError
		de *codec.DecodeError
		ee *codec.EncodeError
		se *statusError
	)
	switch {
	case errors.As(err, &se):
		return se.status
	case errors.As(err, &ve):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, codec.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &de):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ee):
		if errors.Is(err, codec.ErrUnsupportedFormat) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCell),
		errors.Is(err, transfer.ErrNoSession),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns a JSON body for API
// requests or a small HTML page otherwise.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= 500 {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
	} else {
		respondErrorHTML(w, r, userMsg, status)
	}
}

// writeError writes an error that did not come from the service layer,
// such as a rate limit rejection.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondError(w, r, &statusError{status: status, msg: message})
}

// statusError carries a fixed status through respondError.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = ErrorPage(msg).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
