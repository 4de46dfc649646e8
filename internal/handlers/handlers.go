package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chepyr/team-tracker/internal/account"
	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/chepyr/team-tracker/internal/task"
	"github.com/chepyr/team-tracker/internal/team"
	"github.com/chepyr/team-tracker/internal/workspace"
)

type Handler struct {
	Accounts    *account.Service
	Teams       *team.Manager
	Tasks       *task.Service
	Sessions    *session.Manager
	Resolver    *workspace.Resolver
	RateLimiter *RateLimiter
	Logger      *slog.Logger

	JWTSecret []byte
	TokenTTL  time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps an error kind to the response status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotAuthenticated:
		return http.StatusUnauthorized
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Integrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the error's own message, or logs it and answers
// 500 when it is not an *apperr.Error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.Internal {
		sendJSON(w, statusFor(appErr.Kind), errorResponse{Error: appErr.Message, Code: appErr.Code, Field: appErr.Field})
		return
	}
	h.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	sendError(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
