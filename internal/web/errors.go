package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with full technical details and the request ID (server-side)
//   - Mapped via core.MapError to a user message with an action and a code
//   - Rendered as JSON for API calls, an alert fragment for HTMX requests,
//     and a full page otherwise
//
// statusFor derives the HTTP status from the same code, so a message and
// its status never disagree.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/JonMunkholm/overlap/internal/web/templates"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNoFile         = errors.New("no file provided")
	errFileTooLarge   = errors.New("file too large")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// fail responds with the status derived from err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// respondError logs the technical error and writes a user-friendly response
// in the format the client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	logError(r, err, statusCode, userMsg.Code)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// logError records the technical error with the request ID for correlation.
func logError(r *http.Request, err error, statusCode int, code string) {
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)
}

// statusFor maps an error to its HTTP status through its user message code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	code := core.MapError(err).Code
	switch {
	case code == "WB001", code == "DS002":
		return http.StatusNotFound
	case code == "FILE001":
		return http.StatusRequestEntityTooLarge
	case code == "UPL002", code == "SRC001":
		return http.StatusServiceUnavailable
	case code == "UPL005":
		return http.StatusGatewayTimeout
	case code == "RATE001":
		return http.StatusTooManyRequests
	case code == "UPL004":
		// Client went away; the status is only logged.
		return 499
	case strings.HasPrefix(code, "KEY"),
		strings.HasPrefix(code, "COL"),
		strings.HasPrefix(code, "DS"),
		strings.HasPrefix(code, "SEL"),
		strings.HasPrefix(code, "CFG"),
		strings.HasPrefix(code, "FILE"),
		code == "SRC002":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders a full error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.Layout("Error", templates.ErrorAlert(msg.Message, msg.Action, msg.Code)).Render(r.Context(), w)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
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
