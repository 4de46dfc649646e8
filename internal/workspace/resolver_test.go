package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/db/dbtest"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/google/uuid"
)

type failingLookup struct{}

func (failingLookup) GetForMember(context.Context, int64, uuid.UUID) (*models.Team, error) {
	return nil, errors.New("connection reset")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve(t *testing.T) {
	store := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, store, "alice")
	bob := dbtest.User(t, store, "bob")
	alpha := dbtest.Team(t, store, "Alpha", alice)
	r := NewResolver(store.Teams, quietLogger())

	tests := []struct {
		name     string
		user     *models.User
		stored   string
		wantTeam bool
		wantKept bool
	}{
		{name: "no key", user: alice, stored: "", wantTeam: false, wantKept: false},
		{name: "member", user: alice, stored: alpha.UUID.String(), wantTeam: true, wantKept: true},
		{name: "not a member", user: bob, stored: alpha.UUID.String(), wantTeam: false, wantKept: false},
		{name: "unknown team", user: alice, stored: uuid.NewString(), wantTeam: false, wantKept: false},
		{name: "malformed", user: alice, stored: "not-a-uuid", wantTeam: false, wantKept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.Memory{}
			if tt.stored != "" {
				s.Set(session.KeyActiveTeam, tt.stored)
			}
			ws := r.Resolve(ctx, tt.user, s)
			if ws.IsTeam() != tt.wantTeam {
				t.Fatalf("IsTeam = %v, want %v", ws.IsTeam(), tt.wantTeam)
			}
			if tt.wantTeam && ws.Team.ID != alpha.ID {
				t.Fatalf("resolved team %d, want %d", ws.Team.ID, alpha.ID)
			}
			if _, ok := s.Get(session.KeyActiveTeam); ok != tt.wantKept {
				t.Fatalf("key present = %v, want %v", ok, tt.wantKept)
			}
		})
	}
}

func TestResolve_StaleAfterRemoval(t *testing.T) {
	store := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, store, "alice")
	bob := dbtest.User(t, store, "bob")
	alpha := dbtest.Team(t, store, "Alpha", alice)
	m := dbtest.Member(t, store, alpha, bob, models.RoleMember)
	r := NewResolver(store.Teams, quietLogger())

	s := session.Memory{}
	Activate(s, alpha)
	if ws := r.Resolve(ctx, bob, s); !ws.IsTeam() {
		t.Fatal("expected team workspace before removal")
	}

	if err := store.Memberships.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete membership: %v", err)
	}
	if ws := r.Resolve(ctx, bob, s); ws.IsTeam() {
		t.Fatal("expected individual workspace after removal")
	}
	if IsActive(s, alpha) {
		t.Fatal("stale key must be cleared")
	}
}

func TestResolve_StoreFailureKeepsKey(t *testing.T) {
	r := NewResolver(failingLookup{}, quietLogger())
	s := session.Memory{session.KeyActiveTeam: uuid.NewString()}

	ws := r.Resolve(context.Background(), &models.User{ID: 1}, s)
	if ws.IsTeam() {
		t.Fatal("expected individual workspace on store failure")
	}
	if _, ok := s.Get(session.KeyActiveTeam); !ok {
		t.Fatal("store failure must not clear the session key")
	}
}

func TestActivateDeactivate(t *testing.T) {
	team := &models.Team{UUID: uuid.New()}
	s := session.Memory{}
	Activate(s, team)
	if !IsActive(s, team) {
		t.Fatal("expected active")
	}
	Deactivate(s)
	if IsActive(s, team) {
		t.Fatal("expected inactive")
	}
	var _ TeamLookup = (*db.TeamRepository)(nil)
}
