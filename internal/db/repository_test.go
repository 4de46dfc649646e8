package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/db/dbtest"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/google/uuid"
)

func TestTeamRepository_UniqueName(t *testing.T) {
	s := dbtest.Open(t)
	dbtest.Team(t, s, "Alpha", nil)

	second := &models.Team{Name: "Alpha", Password: "abc", CreatedAt: time.Now().UTC()}
	if err := s.Teams.Create(context.Background(), second); !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("second team err = %v, want ErrDuplicate", err)
	}
}

func TestMembershipRepository_UniquePair(t *testing.T) {
	s := dbtest.Open(t)
	u := dbtest.User(t, s, "alice")
	team := dbtest.Team(t, s, "Alpha", u)

	dup := &models.Membership{UserID: u.ID, TeamID: team.ID, Role: models.RoleMember, JoinedAt: time.Now().UTC()}
	if err := s.Memberships.Create(context.Background(), dup); !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("duplicate membership err = %v, want ErrDuplicate", err)
	}
}

func TestTeamRepository_GetForMember(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	bob := dbtest.User(t, s, "bob")
	team := dbtest.Team(t, s, "Alpha", alice)

	got, err := s.Teams.GetForMember(ctx, alice.ID, team.UUID)
	if err != nil {
		t.Fatalf("GetForMember(member): %v", err)
	}
	if got.UUID != team.UUID || got.Name != "Alpha" {
		t.Errorf("GetForMember returned %+v", got)
	}
	if _, err := s.Teams.GetForMember(ctx, bob.ID, team.UUID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("GetForMember(non-member) err = %v, want ErrNotFound", err)
	}
	if _, err := s.Teams.GetForMember(ctx, alice.ID, uuid.New()); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("GetForMember(unknown team) err = %v, want ErrNotFound", err)
	}
}

func TestTeamRepository_DeleteCascades(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	team := dbtest.Team(t, s, "Alpha", alice)
	if err := s.Statuses.CreateDefaults(ctx, &team.ID, alice.ID, time.Now().UTC()); err != nil {
		t.Fatalf("CreateDefaults: %v", err)
	}

	if err := s.Teams.Delete(ctx, team.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Memberships.Get(ctx, alice.ID, team.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("membership should cascade, got err = %v", err)
	}
	statuses, err := s.Statuses.List(ctx, db.Scope{TeamID: &team.ID})
	if err != nil {
		t.Fatalf("List statuses: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("team statuses should cascade, got %d", len(statuses))
	}
}

func TestTeamRepository_DeleteCascadesOnFileDatabase(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Connect(db.DialectSQLite, "file:"+filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(ctx, conn, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := db.NewStore(conn)
	alice := dbtest.User(t, s, "alice")
	team := dbtest.Team(t, s, "Alpha", alice)

	if err := s.Teams.Delete(ctx, team.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Memberships.Get(ctx, alice.ID, team.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("membership should cascade, got err = %v", err)
	}
}

func TestStatusRepository_DefaultsAndScope(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	bob := dbtest.User(t, s, "bob")
	team := dbtest.Team(t, s, "Alpha", alice)

	now := time.Now().UTC()
	if err := s.Statuses.CreateDefaults(ctx, nil, alice.ID, now); err != nil {
		t.Fatalf("CreateDefaults individual: %v", err)
	}
	if err := s.Statuses.CreateDefaults(ctx, &team.ID, alice.ID, now); err != nil {
		t.Fatalf("CreateDefaults team: %v", err)
	}

	own, err := s.Statuses.List(ctx, db.Scope{UserID: alice.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != len(models.DefaultStatuses) {
		t.Errorf("individual statuses = %d, want %d", len(own), len(models.DefaultStatuses))
	}
	teamStatuses, err := s.Statuses.List(ctx, db.Scope{TeamID: &team.ID, UserID: bob.ID})
	if err != nil {
		t.Fatalf("List team: %v", err)
	}
	if len(teamStatuses) != 6 || teamStatuses[0].Name != "To Do" || teamStatuses[5].Name != "Blocked" {
		t.Errorf("unexpected team statuses: %+v", teamStatuses)
	}
	bobs, err := s.Statuses.List(ctx, db.Scope{UserID: bob.ID})
	if err != nil {
		t.Fatalf("List bob: %v", err)
	}
	if len(bobs) != 0 {
		t.Errorf("bob must not see alice's statuses, got %d", len(bobs))
	}
}

func TestStatusRepository_DeleteProtected(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	status := dbtest.Status(t, s, "Open", nil, alice)
	dbtest.Task(t, s, &models.Task{Name: "t", StatusID: status.ID, AuthorID: alice.ID, ExecutorIDs: []int64{alice.ID}})

	inUse, err := s.Statuses.IsReferenced(ctx, status.ID)
	if err != nil || !inUse {
		t.Fatalf("IsReferenced = %v, %v; want true", inUse, err)
	}
	if err := s.Statuses.Delete(ctx, status.ID); !errors.Is(err, db.ErrReferenced) {
		t.Fatalf("Delete referenced status err = %v, want ErrReferenced", err)
	}
}

func TestLabelRepository_IsReferenced(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	status := dbtest.Status(t, s, "Open", nil, alice)
	used := dbtest.Label(t, s, "bug", nil, alice)
	unused := dbtest.Label(t, s, "idea", nil, alice)
	dbtest.Task(t, s, &models.Task{
		Name: "t", StatusID: status.ID, AuthorID: alice.ID,
		ExecutorIDs: []int64{alice.ID}, LabelIDs: []int64{used.ID},
	})

	if inUse, _ := s.Labels.IsReferenced(ctx, used.ID); !inUse {
		t.Error("used label should be referenced")
	}
	if inUse, _ := s.Labels.IsReferenced(ctx, unused.ID); inUse {
		t.Error("unused label should not be referenced")
	}
	if err := s.Labels.Delete(ctx, unused.ID); err != nil {
		t.Fatalf("Delete unused label: %v", err)
	}
	if err := s.Labels.Delete(ctx, used.ID); !errors.Is(err, db.ErrReferenced) {
		t.Fatalf("Delete referenced label err = %v, want ErrReferenced", err)
	}
}

func TestTaskRepository_CreateGetUpdateDelete(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	bob := dbtest.User(t, s, "bob")
	team := dbtest.Team(t, s, "Alpha", alice)
	dbtest.Member(t, s, team, bob, models.RoleMember)
	open := dbtest.Status(t, s, "Open", &team.ID, alice)
	done := dbtest.Status(t, s, "Done", &team.ID, alice)
	bug := dbtest.Label(t, s, "bug", &team.ID, alice)

	task := dbtest.Task(t, s, &models.Task{
		Name: "First", TeamID: &team.ID, StatusID: open.ID, AuthorID: alice.ID,
		ExecutorIDs: []int64{alice.ID, bob.ID}, LabelIDs: []int64{bug.ID},
	})

	got, err := s.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "First" || len(got.ExecutorIDs) != 2 || len(got.LabelIDs) != 1 || *got.TeamID != team.ID {
		t.Fatalf("GetByID mismatch: %+v", got)
	}

	got.Name = "Updated"
	got.StatusID = done.ID
	got.ExecutorIDs = []int64{bob.ID}
	got.LabelIDs = nil
	if err := s.InTx(ctx, func(tx *db.Store) error { return tx.Tasks.Update(ctx, got) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, err := s.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if after.Name != "Updated" || after.StatusID != done.ID || len(after.ExecutorIDs) != 1 ||
		after.ExecutorIDs[0] != bob.ID || len(after.LabelIDs) != 0 {
		t.Fatalf("Update not applied: %+v", after)
	}

	if err := s.Tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Tasks.GetByID(ctx, task.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("GetByID after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Tasks.Delete(ctx, task.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestTaskRepository_HasParticipant(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	bob := dbtest.User(t, s, "bob")
	carol := dbtest.User(t, s, "carol")
	team := dbtest.Team(t, s, "Alpha", alice)
	dbtest.Member(t, s, team, bob, models.RoleMember)
	dbtest.Member(t, s, team, carol, models.RoleMember)
	status := dbtest.Status(t, s, "Open", &team.ID, alice)
	dbtest.Task(t, s, &models.Task{
		Name: "t", TeamID: &team.ID, StatusID: status.ID, AuthorID: alice.ID, ExecutorIDs: []int64{bob.ID},
	})

	for _, tc := range []struct {
		user *models.User
		want bool
	}{{alice, true}, {bob, true}, {carol, false}} {
		got, err := s.Tasks.HasParticipant(ctx, tc.user.ID, team.ID)
		if err != nil {
			t.Fatalf("HasParticipant(%s): %v", tc.user.Username, err)
		}
		if got != tc.want {
			t.Errorf("HasParticipant(%s) = %v, want %v", tc.user.Username, got, tc.want)
		}
	}
	if n, _ := s.Tasks.CountByTeam(ctx, team.ID); n != 1 {
		t.Errorf("CountByTeam = %d, want 1", n)
	}
}

func TestTaskRepository_ListExcludeLabel(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	status := dbtest.Status(t, s, "Open", nil, alice)
	bug := dbtest.Label(t, s, "bug", nil, alice)
	ui := dbtest.Label(t, s, "ui", nil, alice)

	both := dbtest.Task(t, s, &models.Task{Name: "both", StatusID: status.ID, AuthorID: alice.ID,
		ExecutorIDs: []int64{alice.ID}, LabelIDs: []int64{bug.ID, ui.ID}})
	onlyUI := dbtest.Task(t, s, &models.Task{Name: "ui", StatusID: status.ID, AuthorID: alice.ID,
		ExecutorIDs: []int64{alice.ID}, LabelIDs: []int64{ui.ID}})
	none := dbtest.Task(t, s, &models.Task{Name: "none", StatusID: status.ID, AuthorID: alice.ID,
		ExecutorIDs: []int64{alice.ID}})

	tasks, err := s.Tasks.List(ctx, db.TaskCriteria{
		Scope:      db.Scope{UserID: alice.ID},
		Conditions: []db.Condition{{Field: db.FieldLabel, Value: bug.ID, Exclude: true}},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ids := map[int64]bool{}
	for _, task := range tasks {
		ids[task.ID] = true
	}
	if ids[both.ID] || !ids[onlyUI.ID] || !ids[none.ID] || len(tasks) != 2 {
		t.Fatalf("exclude label returned %v", ids)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.User(t, s, "alice")
	now := time.Now().UTC()

	rec := &db.SessionRecord{ID: uuid.NewString(), UserID: alice.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := s.Sessions.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Sessions.Save(ctx, rec.ID, map[string]string{"active_team": "abc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Sessions.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Data["active_team"] != "abc" || got.UserID != alice.ID {
		t.Fatalf("Get returned %+v", got)
	}

	expired := &db.SessionRecord{ID: uuid.NewString(), UserID: alice.ID, CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	if err := s.Sessions.Create(ctx, expired); err != nil {
		t.Fatalf("Create expired: %v", err)
	}
	n, err := s.Sessions.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired = %d, %v; want 1", n, err)
	}
	if _, err := s.Sessions.Get(ctx, expired.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expired session still present: %v", err)
	}
}

func TestStore_InTxRollsBack(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx *db.Store) error {
		u := &models.User{Username: "ghost", PasswordHash: "x", CreatedAt: time.Now().UTC()}
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}
	if _, err := s.Users.GetByUsername(ctx, "ghost"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("user should be rolled back, got %v", err)
	}
}
