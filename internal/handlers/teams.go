package handlers

import (
	"net/http"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/team"
	"github.com/google/uuid"
)

type workspaceView struct {
	Mode string       `json:"mode"`
	Team *models.Team `json:"team,omitempty"`
}

func viewOf(ws models.WorkspaceContext) workspaceView {
	return workspaceView{Mode: ws.Mode.String(), Team: ws.Team}
}

// pathUUID reads a UUID path value. Malformed ids are reported as a
// missing entity.
func pathUUID(r *http.Request, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.NotFoundf(entity)
	}
	return id, nil
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	teams, err := h.Teams.List(r.Context(), rc.User)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"teams":     teams,
		"workspace": viewOf(rc.Workspace),
	})
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input team.Input
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Teams.Create(r.Context(), rc.User, input, rc.Session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathUUID(r, "team", "team")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var input team.Input
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Teams.Update(r.Context(), rc.User, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathUUID(r, "team", "team")
	if err == nil {
		err = h.Teams.Delete(r.Context(), rc.User, id, rc.Session)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) JoinTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input struct {
		Name     string `json:"team_name"`
		Password string `json:"team_password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Teams.Join(r.Context(), rc.User, input.Name, input.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, t)
}

func (h *Handler) ExitTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathUUID(r, "team", "team")
	if err == nil {
		err = h.Teams.Exit(r.Context(), rc.User, id, rc.Session)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SwitchTeam(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input struct {
		Team string `json:"team"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ws, err := h.Teams.Switch(r.Context(), rc.User, input.Team, rc.Session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, viewOf(ws))
}

func (h *Handler) CurrentWorkspace(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	sendJSON(w, http.StatusOK, viewOf(rc.Workspace))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathUUID(r, "team", "team")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	members, err := h.Teams.Members(r.Context(), rc.User, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, members)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	teamID, err := pathUUID(r, "team", "team")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	membershipID, err := pathUUID(r, "membership", "membership")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var input struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	m, err := h.Teams.UpdateRole(r.Context(), rc.User, teamID, membershipID, input.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, m)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	teamID, err := pathUUID(r, "team", "team")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	membershipID, err := pathUUID(r, "membership", "membership")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Teams.RemoveMember(r.Context(), rc.User, teamID, membershipID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
