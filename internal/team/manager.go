// Package team implements the team lifecycle: create, update, delete, join,
// exit, workspace switching and member administration.
package team

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/permission"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/chepyr/team-tracker/internal/workspace"
	"github.com/google/uuid"
)

const (
	MinPasswordLength = 3
	// IndividualSentinel selects the individual workspace in Switch.
	IndividualSentinel = "individual"
)

type Input struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type Manager struct {
	store  *db.Store
	gate   *permission.Gate
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store *db.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		gate:   permission.NewGate(store),
		logger: logger,
		now:    time.Now,
	}
}

// Create makes actor the admin of a new team, seeds its statuses and
// switches the session to it.
func (m *Manager) Create(ctx context.Context, actor *models.User, in Input, sess session.Store) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "Team name is required")
	}
	if err := validatePassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	team := &models.Team{
		Name:        name,
		Password:    in.Password,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
	}
	err := m.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Teams.Create(ctx, team); err != nil {
			return err
		}
		admin := &models.Membership{UserID: actor.ID, TeamID: team.ID, Role: models.RoleAdmin, JoinedAt: now}
		if err := tx.Memberships.Create(ctx, admin); err != nil {
			return err
		}
		return tx.Statuses.CreateDefaults(ctx, &team.ID, actor.ID, now)
	})
	if errors.Is(err, db.ErrDuplicate) {
		return nil, duplicateName()
	}
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	workspace.Activate(sess, team)
	m.logger.Info("team created", "team", team.UUID, "name", team.Name, "admin_id", actor.ID)
	return team, nil
}

// Update changes name and description. A blank password keeps the current
// one.
func (m *Manager) Update(ctx context.Context, actor *models.User, teamID uuid.UUID, in Input) (*models.Team, error) {
	team, err := m.memberTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if err := m.authorize(m.gate.CanModifyTeam(ctx, actor, team)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "Team name is required")
	}
	if in.Password != "" || in.PasswordConfirm != "" {
		if err := validatePassword(in.Password, in.PasswordConfirm); err != nil {
			return nil, err
		}
		team.Password = in.Password
	}
	team.Name = name
	team.Description = strings.TrimSpace(in.Description)

	err = m.store.Teams.Update(ctx, team)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, duplicateName()
	}
	if err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	m.logger.Info("team updated", "team", team.UUID, "actor_id", actor.ID)
	return team, nil
}

// Delete removes a team that has only admins left and no tasks.
func (m *Manager) Delete(ctx context.Context, actor *models.User, teamID uuid.UUID, sess session.Store) error {
	team, err := m.memberTeam(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if err := m.authorize(m.gate.CanModifyTeam(ctx, actor, team)); err != nil {
		return err
	}

	err = m.store.InTx(ctx, func(tx *db.Store) error {
		members, err := tx.Memberships.CountByRole(ctx, team.ID, models.RoleMember)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if members > 0 {
			return apperr.Conflict("team_has_members", "Remove all members before deleting the team")
		}
		tasks, err := tx.Tasks.CountByTeam(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if tasks > 0 {
			return apperr.Conflict("team_has_tasks", "Delete the team's tasks before deleting the team")
		}
		return tx.Teams.Delete(ctx, team.ID)
	})
	if err != nil {
		return err
	}

	if workspace.IsActive(sess, team) {
		workspace.Deactivate(sess)
	}
	m.logger.Info("team deleted", "team", team.UUID, "actor_id", actor.ID)
	return nil
}

// Join adds actor as a member of the team with the given name and password.
func (m *Manager) Join(ctx context.Context, actor *models.User, name, password string) (*models.Team, error) {
	team, err := m.JoinIn(ctx, m.store, actor, name, password)
	if err != nil {
		return nil, err
	}
	m.logger.Info("member joined", "team", team.UUID, "user_id", actor.ID)
	return team, nil
}

// JoinIn is Join against the given store, so registration can join inside
// its own transaction. It does not log; the caller does once the join is
// committed.
func (m *Manager) JoinIn(ctx context.Context, store *db.Store, actor *models.User, name, password string) (*models.Team, error) {
	team, err := store.Teams.GetByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, db.ErrNotFound) {
		return nil, badCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	// Team passwords are stored and compared as given.
	if subtle.ConstantTimeCompare([]byte(team.Password), []byte(password)) != 1 {
		return nil, badCredentials()
	}

	membership := &models.Membership{
		UserID:   actor.ID,
		TeamID:   team.ID,
		Role:     models.RoleMember,
		JoinedAt: m.now().UTC(),
	}
	err = store.Memberships.Create(ctx, membership)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, apperr.Invalid("team_name", "You are already a member of this team")
	}
	if err != nil {
		return nil, fmt.Errorf("join team: %w", err)
	}
	return team, nil
}

// Exit removes actor's own membership. Leaving the active team returns the
// session to the individual workspace.
func (m *Manager) Exit(ctx context.Context, actor *models.User, teamID uuid.UUID, sess session.Store) error {
	team, err := m.store.Teams.GetByUUID(ctx, teamID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFoundf("team")
	}
	if err != nil {
		return fmt.Errorf("find team: %w", err)
	}
	if err := m.authorize(m.gate.CanExitTeam(ctx, actor, team)); err != nil {
		return err
	}

	membership, err := m.store.Memberships.Get(ctx, actor.ID, team.ID)
	if err == nil {
		err = m.store.Memberships.Delete(ctx, membership.ID)
	}
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFoundf("team")
	}
	if err != nil {
		return fmt.Errorf("exit team: %w", err)
	}

	if workspace.IsActive(sess, team) {
		workspace.Deactivate(sess)
	}
	m.logger.Info("member exited", "team", team.UUID, "user_id", actor.ID)
	return nil
}

// Switch changes the active workspace. target is a team UUID or
// IndividualSentinel (or empty). On failure the session is not modified and
// the error is always "Team not found".
func (m *Manager) Switch(ctx context.Context, actor *models.User, target string, sess session.Store) (models.WorkspaceContext, error) {
	target = strings.TrimSpace(target)
	if target == "" || target == IndividualSentinel {
		workspace.Deactivate(sess)
		return models.Individual(), nil
	}
	id, err := uuid.Parse(target)
	if err != nil {
		return models.WorkspaceContext{}, apperr.NotFoundf("team")
	}
	team, err := m.memberTeam(ctx, actor, id)
	if err != nil {
		return models.WorkspaceContext{}, err
	}
	workspace.Activate(sess, team)
	return models.InTeam(team), nil
}

// UpdateRole sets the role of another member of a team actor administers.
func (m *Manager) UpdateRole(ctx context.Context, actor *models.User, teamID, membershipID uuid.UUID, role string) (*models.Membership, error) {
	newRole, err := models.ParseRole(role)
	if err != nil {
		return nil, apperr.Invalid("role", "Role must be admin or member")
	}
	team, target, err := m.teamMembership(ctx, actor, teamID, membershipID)
	if err != nil {
		return nil, err
	}
	if err := m.authorize(m.gate.CanManageMembership(ctx, actor, target)); err != nil {
		return nil, err
	}

	if err := m.store.Memberships.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	m.logger.Info("role changed", "team", team.UUID, "user_id", target.UserID, "from", target.Role, "to", newRole, "actor_id", actor.ID)
	target.Role = newRole
	return target, nil
}

// RemoveMember deletes another member's membership. The acting admin's
// session is never touched.
func (m *Manager) RemoveMember(ctx context.Context, actor *models.User, teamID, membershipID uuid.UUID) error {
	team, target, err := m.teamMembership(ctx, actor, teamID, membershipID)
	if err != nil {
		return err
	}
	if err := m.authorize(m.gate.CanRemoveMember(ctx, actor, team, target)); err != nil {
		return err
	}
	if err := m.store.Memberships.Delete(ctx, target.ID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	m.logger.Info("member removed", "team", team.UUID, "user_id", target.UserID, "actor_id", actor.ID)
	return nil
}

// List returns the teams actor belongs to.
func (m *Manager) List(ctx context.Context, actor *models.User) ([]*models.Team, error) {
	teams, err := m.store.Teams.ListByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (m *Manager) Members(ctx context.Context, actor *models.User, teamID uuid.UUID) ([]*models.Member, error) {
	team, err := m.memberTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	members, err := m.store.Memberships.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// memberTeam loads a team actor belongs to. Missing teams and teams actor
// is not part of look the same.
func (m *Manager) memberTeam(ctx context.Context, actor *models.User, teamID uuid.UUID) (*models.Team, error) {
	team, err := m.store.Teams.GetForMember(ctx, actor.ID, teamID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFoundf("team")
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return team, nil
}

func (m *Manager) teamMembership(ctx context.Context, actor *models.User, teamID, membershipID uuid.UUID) (*models.Team, *models.Membership, error) {
	team, err := m.memberTeam(ctx, actor, teamID)
	if err != nil {
		return nil, nil, err
	}
	target, err := m.store.Memberships.GetByUUID(ctx, membershipID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && target.TeamID != team.ID) {
		return nil, nil, apperr.NotFoundf("membership")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find membership: %w", err)
	}
	return team, target, nil
}

func (m *Manager) authorize(d permission.Decision, err error) error {
	if err != nil {
		return err
	}
	return d.Err()
}

func validatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return apperr.Invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if password != confirm {
		return apperr.Invalid("password_confirm", "Passwords do not match")
	}
	return nil
}

func duplicateName() error {
	return apperr.Invalid("name", "A team with this name already exists")
}

func badCredentials() error {
	return apperr.Invalid("team_name", "Invalid team name or password")
}
