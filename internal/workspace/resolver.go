// Package workspace decides whether a request runs in the actor's individual
// workspace or in one of their teams.
package workspace

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/google/uuid"
)

// TeamLookup finds a team by UUID only if userID is a member of it.
// *db.TeamRepository implements it.
type TeamLookup interface {
	GetForMember(ctx context.Context, userID int64, teamUUID uuid.UUID) (*models.Team, error)
}

type Resolver struct {
	teams  TeamLookup
	logger *slog.Logger
}

func NewResolver(teams TeamLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{teams: teams, logger: logger}
}

// Resolve never fails. A stored team the user no longer belongs to is
// removed from the session and the request falls back to individual mode.
func (r *Resolver) Resolve(ctx context.Context, user *models.User, store session.Store) models.WorkspaceContext {
	raw, ok := store.Get(session.KeyActiveTeam)
	if !ok || raw == "" {
		return models.Individual()
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		r.logger.Info("clearing malformed active team", "user_id", user.ID, "value", raw)
		store.Clear(session.KeyActiveTeam)
		return models.Individual()
	}

	team, err := r.teams.GetForMember(ctx, user.ID, id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		r.logger.Info("clearing stale active team", "user_id", user.ID, "team", id)
		store.Clear(session.KeyActiveTeam)
		return models.Individual()
	case err != nil:
		r.logger.Error("resolve workspace", "user_id", user.ID, "team", id, "error", err)
		return models.Individual()
	}
	return models.InTeam(team)
}

func Activate(store session.Store, team *models.Team) {
	store.Set(session.KeyActiveTeam, team.UUID.String())
}

func Deactivate(store session.Store) {
	store.Clear(session.KeyActiveTeam)
}

// IsActive reports whether team is the workspace stored in the session.
func IsActive(store session.Store, team *models.Team) bool {
	raw, ok := store.Get(session.KeyActiveTeam)
	return ok && raw == team.UUID.String()
}
