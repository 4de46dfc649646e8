package handlers

import (
	"net/http"
	"strconv"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/filter"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/task"
)

type filterView struct {
	Params      filter.Params `json:"params"`
	ActiveCount int           `json:"active_count"`
	ShowFilter  bool          `json:"show_filter"`
	SavedActive bool          `json:"saved_active"`
	SavedParams filter.Params `json:"saved_params,omitempty"`
	UsingSaved  bool          `json:"using_saved"`
}

func pathID(r *http.Request, entity string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFoundf(entity)
	}
	return id, nil
}

/*
ListTasks lists the workspace's tasks. Query parameters are the filter
parameters (status, executor, labels, their *_exclude flags, self_tasks,
created_after, created_before) plus show_filter, save_as_default and
reset_default.
*/
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	params := filter.FromValues(r.URL.Query())
	tasks, view, err := h.Tasks.List(r.Context(), rc.User, rc.Workspace, params, rc.Session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"tasks":     tasks,
		"workspace": viewOf(rc.Workspace),
		"filter": filterView{
			Params:      view.Params,
			ActiveCount: view.ActiveCount,
			ShowFilter:  view.ShowFilter,
			SavedActive: view.SavedActive,
			SavedParams: view.SavedParams,
			UsingSaved:  view.UsingSaved,
		},
	})
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input task.Input
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Tasks.Create(r.Context(), rc.User, rc.Workspace, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, t)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathID(r, "task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.Tasks.Get(r.Context(), rc.User, rc.Workspace, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathID(r, "task")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var input task.Input
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Tasks.Update(r.Context(), rc.User, rc.Workspace, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathID(r, "task")
	if err == nil {
		err = h.Tasks.Delete(r.Context(), rc.User, rc.Workspace, id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	statuses, err := h.Tasks.ListStatuses(r.Context(), rc.User, rc.Workspace)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if statuses == nil {
		statuses = []*models.Status{}
	}
	sendJSON(w, http.StatusOK, statuses)
}

func (h *Handler) CreateStatus(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input task.StatusInput
	if !decodeJSON(w, r, &input) {
		return
	}
	s, err := h.Tasks.CreateStatus(r.Context(), rc.User, rc.Workspace, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, s)
}

func (h *Handler) DeleteStatus(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathID(r, "status")
	if err == nil {
		err = h.Tasks.DeleteStatus(r.Context(), rc.User, rc.Workspace, id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	labels, err := h.Tasks.ListLabels(r.Context(), rc.User, rc.Workspace)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if labels == nil {
		labels = []*models.Label{}
	}
	sendJSON(w, http.StatusOK, labels)
}

func (h *Handler) CreateLabel(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	var input struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	l, err := h.Tasks.CreateLabel(r.Context(), rc.User, rc.Workspace, input.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, l)
}

func (h *Handler) DeleteLabel(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	id, err := pathID(r, "label")
	if err == nil {
		err = h.Tasks.DeleteLabel(r.Context(), rc.User, rc.Workspace, id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
