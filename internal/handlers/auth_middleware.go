package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

// claims identify the user (subject) and the login session.
type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// RequestContext is what an authenticated handler works with.
type RequestContext struct {
	User      *models.User
	Session   *session.Session
	Workspace models.WorkspaceContext
}

type authedHandler func(w http.ResponseWriter, r *http.Request, rc *RequestContext)

func (h *Handler) generateToken(userID int64, sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenTTL)),
		},
	})
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

/*
AuthMiddleware verifies the bearer token, loads the user and their login
session and resolves the workspace. The session is saved after next
returns if next changed it.
*/
func (h *Handler) AuthMiddleware(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		var c claims
		token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
			return h.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			sendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(c.Subject, 10, 64)
		if err != nil || c.SessionID == "" {
			sendError(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := h.Accounts.Get(ctx, userID)
		if apperr.Is(err, apperr.NotFound) {
			sendError(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		sess, err := h.Sessions.Load(ctx, c.SessionID, user.ID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		rc := &RequestContext{
			User:      user,
			Session:   sess,
			Workspace: h.Resolver.Resolve(ctx, user, sess),
		}
		next(w, r, rc)

		if err := h.Sessions.Save(ctx, sess); err != nil {
			h.logger().Error("save session", "session", sess.ID, "user_id", user.ID, "error", err)
		}
	}
}
