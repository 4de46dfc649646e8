package db

import (
	"fmt"

	"github.com/chepyr/team-tracker/internal/models"
)

// Scope selects the rows that belong to one workspace: the team's rows, or
// the user's rows that have no team.
type Scope struct {
	TeamID *int64
	UserID int64
}

func ScopeOf(ws models.WorkspaceContext, userID int64) Scope {
	return Scope{TeamID: ws.TeamID(), UserID: userID}
}

// clause renders the scope for a table alias whose owner column is ownerCol.
// Placeholders start at $next.
func (s Scope) clause(alias, ownerCol string, next int) (string, []any) {
	if s.TeamID != nil {
		return fmt.Sprintf("%s.team_id = $%d", alias, next), []any{*s.TeamID}
	}
	return fmt.Sprintf("%s.team_id IS NULL AND %s.%s = $%d", alias, alias, ownerCol, next), []any{s.UserID}
}
