// Package dbtest opens migrated in-memory SQLite stores and creates fixture
// rows for tests in other packages.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
)

// Open returns a Store over a fresh in-memory database with the full schema.
func Open(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.Connect(db.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewStore(conn)
}

func User(t *testing.T, s *db.Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Team creates a team with admin as its only (admin) member.
func Team(t *testing.T, s *db.Store, name string, admin *models.User) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Password: "secret", CreatedAt: time.Now().UTC()}
	if err := s.Teams.Create(context.Background(), team); err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	if admin != nil {
		Member(t, s, team, admin, models.RoleAdmin)
	}
	return team
}

func Member(t *testing.T, s *db.Store, team *models.Team, user *models.User, role models.Role) *models.Membership {
	t.Helper()
	m := &models.Membership{UserID: user.ID, TeamID: team.ID, Role: role, JoinedAt: time.Now().UTC()}
	if err := s.Memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("create membership: %v", err)
	}
	return m
}

func Status(t *testing.T, s *db.Store, name string, teamID *int64, creator *models.User) *models.Status {
	t.Helper()
	st := &models.Status{Name: name, TeamID: teamID, CreatorID: creator.ID, CreatedAt: time.Now().UTC()}
	if err := s.Statuses.Create(context.Background(), st); err != nil {
		t.Fatalf("create status %s: %v", name, err)
	}
	return st
}

func Label(t *testing.T, s *db.Store, name string, teamID *int64, creator *models.User) *models.Label {
	t.Helper()
	l := &models.Label{Name: name, TeamID: teamID, CreatorID: creator.ID, CreatedAt: time.Now().UTC()}
	if err := s.Labels.Create(context.Background(), l); err != nil {
		t.Fatalf("create label %s: %v", name, err)
	}
	return l
}

// Task inserts task as given; a zero CreatedAt becomes now.
func Task(t *testing.T, s *db.Store, task *models.Task) *models.Task {
	t.Helper()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	err := s.InTx(context.Background(), func(tx *db.Store) error {
		return tx.Tasks.Create(context.Background(), task)
	})
	if err != nil {
		t.Fatalf("create task %s: %v", task.Name, err)
	}
	return task
}

func Ptr[T any](v T) *T {
	return &v
}
