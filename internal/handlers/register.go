package handlers

import (
	"net/http"
	"strconv"

	"github.com/chepyr/team-tracker/internal/account"
	"github.com/chepyr/team-tracker/internal/apperr"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.limited(w, r) {
		return
	}
	var input account.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Accounts.Register(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.limited(w, r) {
		return
	}
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Username == "" || input.Password == "" {
		sendError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.Accounts.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.Sessions.Start(ctx, user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token, err := h.generateToken(user.ID, sess.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger().Info("user logged in", "user_id", user.ID)
	sendJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	if err := h.Sessions.End(r.Context(), rc.Session); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.NotFoundf("user"))
		return
	}
	var input account.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Accounts.UpdateProfile(r.Context(), rc.User, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}
