package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
)

// Lookup is what the gate reads from the store. *db.Store implements it.
type Lookup interface {
	Membership(ctx context.Context, userID, teamID int64) (*models.Membership, error)
	IsTaskParticipant(ctx context.Context, userID, teamID int64) (bool, error)
	LabelInUse(ctx context.Context, labelID int64) (bool, error)
	StatusInUse(ctx context.Context, statusID int64) (bool, error)
}

// Gate evaluates predicates. The returned error is set only when the store
// fails; a denial is always a Decision.
type Gate struct {
	lookup Lookup
}

func NewGate(lookup Lookup) *Gate {
	return &Gate{lookup: lookup}
}

func (g *Gate) membership(ctx context.Context, userID, teamID int64) (*models.Membership, error) {
	m, err := g.lookup.Membership(ctx, userID, teamID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("membership lookup: %w", err)
	}
	return m, nil
}

func CanModifyUser(actor, target *models.User) Decision {
	if actor.ID != target.ID {
		return Deny(apperr.PermissionDenied, NotSelf)
	}
	return Allow()
}

func (g *Gate) CanModifyTeam(ctx context.Context, actor *models.User, team *models.Team) (Decision, error) {
	m, err := g.membership(ctx, actor.ID, team.ID)
	if err != nil {
		return Decision{}, err
	}
	if !m.IsAdmin() {
		return Deny(apperr.PermissionDenied, NotAdmin), nil
	}
	return Allow(), nil
}

// CanManageMembership allows team admins to change the role of members other
// than themselves.
func (g *Gate) CanManageMembership(ctx context.Context, actor *models.User, target *models.Membership) (Decision, error) {
	m, err := g.membership(ctx, actor.ID, target.TeamID)
	if err != nil {
		return Decision{}, err
	}
	if !m.IsAdmin() {
		return Deny(apperr.PermissionDenied, NotAdmin), nil
	}
	if target.UserID == actor.ID {
		return Deny(apperr.PermissionDenied, SelfRoleChange), nil
	}
	return Allow(), nil
}

func CanDeleteTask(actor *models.User, task *models.Task) Decision {
	if task.AuthorID != actor.ID {
		return Deny(apperr.PermissionDenied, NotAuthor)
	}
	return Allow()
}

func CanUpdateTask(actor *models.User, task *models.Task) Decision {
	if task.AuthorID != actor.ID && !task.HasExecutor(actor.ID) {
		return Deny(apperr.PermissionDenied, NotParticipant)
	}
	return Allow()
}

// CanViewTask hides tasks that live outside the current workspace.
func CanViewTask(ws models.WorkspaceContext, actor *models.User, task *models.Task) Decision {
	if !ws.Owns(task.TeamID, task.AuthorID, actor.ID) {
		return notFound("task")
	}
	return Allow()
}

func (g *Gate) CanDeleteLabel(ctx context.Context, label *models.Label) (Decision, error) {
	inUse, err := g.lookup.LabelInUse(ctx, label.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("label usage: %w", err)
	}
	if inUse {
		return Deny(apperr.Integrity, LabelInUse), nil
	}
	return Allow(), nil
}

func (g *Gate) CanDeleteStatus(ctx context.Context, status *models.Status) (Decision, error) {
	inUse, err := g.lookup.StatusInUse(ctx, status.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("status usage: %w", err)
	}
	if inUse {
		return Deny(apperr.Integrity, StatusInUse), nil
	}
	return Allow(), nil
}

// CanExitTeam refuses admins and anyone still attached to a team task.
func (g *Gate) CanExitTeam(ctx context.Context, actor *models.User, team *models.Team) (Decision, error) {
	m, err := g.membership(ctx, actor.ID, team.ID)
	if err != nil {
		return Decision{}, err
	}
	if m == nil {
		return notFound("team"), nil
	}
	if m.IsAdmin() {
		return Deny(apperr.PermissionDenied, AdminExit), nil
	}
	return g.noTeamTasks(ctx, actor.ID, team.ID)
}

func (g *Gate) CanRemoveMember(ctx context.Context, actor *models.User, team *models.Team, target *models.Membership) (Decision, error) {
	m, err := g.membership(ctx, actor.ID, team.ID)
	if err != nil {
		return Decision{}, err
	}
	if !m.IsAdmin() {
		return Deny(apperr.PermissionDenied, NotAdmin), nil
	}
	if target.TeamID != team.ID {
		return notFound("membership"), nil
	}
	if target.IsAdmin() {
		return Deny(apperr.PermissionDenied, RemoveAdmin), nil
	}
	return g.noTeamTasks(ctx, target.UserID, team.ID)
}

func (g *Gate) noTeamTasks(ctx context.Context, userID, teamID int64) (Decision, error) {
	busy, err := g.lookup.IsTaskParticipant(ctx, userID, teamID)
	if err != nil {
		return Decision{}, fmt.Errorf("task participation: %w", err)
	}
	if busy {
		return Deny(apperr.Integrity, HasTasks), nil
	}
	return Allow(), nil
}
