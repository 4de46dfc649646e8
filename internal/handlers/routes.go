package handlers

import "net/http"

// Routes registers every endpoint on a new ServeMux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	auth := h.AuthMiddleware

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", auth(h.Logout))
	mux.HandleFunc("PUT /users/{id}", auth(h.UpdateUser))

	mux.HandleFunc("GET /workspace", auth(h.CurrentWorkspace))
	mux.HandleFunc("GET /teams", auth(h.ListTeams))
	mux.HandleFunc("POST /teams", auth(h.CreateTeam))
	mux.HandleFunc("POST /teams/join", auth(h.JoinTeam))
	mux.HandleFunc("POST /teams/switch", auth(h.SwitchTeam))
	mux.HandleFunc("PUT /teams/{team}", auth(h.UpdateTeam))
	mux.HandleFunc("DELETE /teams/{team}", auth(h.DeleteTeam))
	mux.HandleFunc("POST /teams/{team}/exit", auth(h.ExitTeam))
	mux.HandleFunc("GET /teams/{team}/members", auth(h.ListMembers))
	mux.HandleFunc("PUT /teams/{team}/members/{membership}", auth(h.UpdateMember))
	mux.HandleFunc("DELETE /teams/{team}/members/{membership}", auth(h.RemoveMember))

	mux.HandleFunc("GET /tasks", auth(h.ListTasks))
	mux.HandleFunc("POST /tasks", auth(h.CreateTask))
	mux.HandleFunc("GET /tasks/{id}", auth(h.GetTask))
	mux.HandleFunc("PUT /tasks/{id}", auth(h.UpdateTask))
	mux.HandleFunc("DELETE /tasks/{id}", auth(h.DeleteTask))

	mux.HandleFunc("GET /statuses", auth(h.ListStatuses))
	mux.HandleFunc("POST /statuses", auth(h.CreateStatus))
	mux.HandleFunc("DELETE /statuses/{id}", auth(h.DeleteStatus))
	mux.HandleFunc("GET /labels", auth(h.ListLabels))
	mux.HandleFunc("POST /labels", auth(h.CreateLabel))
	mux.HandleFunc("DELETE /labels/{id}", auth(h.DeleteLabel))
	return mux
}
