package models

type WorkspaceMode int

const (
	ModeIndividual WorkspaceMode = iota
	ModeTeam
)

func (m WorkspaceMode) String() string {
	if m == ModeTeam {
		return "team"
	}
	return "individual"
}

// WorkspaceContext is the scope a request operates in. Team is set only in
// ModeTeam.
type WorkspaceContext struct {
	Mode WorkspaceMode
	Team *Team
}

func Individual() WorkspaceContext {
	return WorkspaceContext{Mode: ModeIndividual}
}

func InTeam(team *Team) WorkspaceContext {
	return WorkspaceContext{Mode: ModeTeam, Team: team}
}

func (w WorkspaceContext) IsTeam() bool {
	return w.Mode == ModeTeam && w.Team != nil
}

// TeamID returns the active team id, or nil in individual mode.
func (w WorkspaceContext) TeamID() *int64 {
	if !w.IsTeam() {
		return nil
	}
	id := w.Team.ID
	return &id
}

// Owns reports whether an entity scoped by (teamID, ownerID) belongs to this
// workspace for the given actor. Team entities belong to their team;
// individual entities belong to their owner only.
func (w WorkspaceContext) Owns(teamID *int64, ownerID, actorID int64) bool {
	if w.IsTeam() {
		return teamID != nil && *teamID == w.Team.ID
	}
	return teamID == nil && ownerID == actorID
}
