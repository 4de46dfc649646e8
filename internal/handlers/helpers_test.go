package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chepyr/team-tracker/internal/account"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/db/dbtest"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/chepyr/team-tracker/internal/task"
	"github.com/chepyr/team-tracker/internal/team"
	"github.com/chepyr/team-tracker/internal/workspace"
)

const testSecret = "super_secret_for_tests_0123456789"

func newTestHandler(t *testing.T) (*Handler, *db.Store) {
	t.Helper()
	store := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	teams := team.NewManager(store, logger)
	return &Handler{
		Accounts:  account.NewService(store, teams, logger),
		Teams:     teams,
		Tasks:     task.NewService(store, logger),
		Sessions:  session.NewManager(store.Sessions, time.Hour),
		Resolver:  workspace.NewResolver(store.Teams, logger),
		Logger:    logger,
		JWTSecret: []byte(testSecret),
		TokenTTL:  time.Hour,
	}, store
}

type client struct {
	t   *testing.T
	mux http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.mux.ServeHTTP(rec, req)
	return rec
}

// expect checks the status and decodes the body into out when out is set.
func (c client) expect(rec *httptest.ResponseRecorder, status int, out any) {
	c.t.Helper()
	if rec.Code != status {
		c.t.Fatalf("status = %d, want %d, body=%s", rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			c.t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

// signup registers username and logs in, returning the token.
func (c client) signup(username string) string {
	c.t.Helper()
	c.expect(c.do(http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": "pass1234",
	}), http.StatusCreated, nil)

	var out struct {
		Token string `json:"token"`
	}
	c.expect(c.do(http.MethodPost, "/login", "", map[string]string{
		"username": username, "password": "pass1234",
	}), http.StatusOK, &out)
	if out.Token == "" {
		c.t.Fatal("login returned no token")
	}
	return out.Token
}
