package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "member", want: RoleMember},
		{in: "Admin", wantErr: true},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRole(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWorkspaceContext_Owns(t *testing.T) {
	teamID := int64(7)
	otherTeam := int64(8)
	team := &Team{ID: teamID}

	tests := []struct {
		name    string
		ws      WorkspaceContext
		teamID  *int64
		ownerID int64
		want    bool
	}{
		{"team entity in its team", InTeam(team), &teamID, 2, true},
		{"other team entity", InTeam(team), &otherTeam, 1, false},
		{"individual entity in team mode", InTeam(team), nil, 1, false},
		{"own individual entity", Individual(), nil, 1, true},
		{"someone else's individual entity", Individual(), nil, 2, false},
		{"team entity in individual mode", Individual(), &teamID, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ws.Owns(tt.teamID, tt.ownerID, 1); got != tt.want {
				t.Errorf("Owns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkspaceContext_TeamID(t *testing.T) {
	if Individual().TeamID() != nil {
		t.Fatal("individual workspace must not have a team id")
	}
	id := InTeam(&Team{ID: 3}).TeamID()
	if id == nil || *id != 3 {
		t.Fatalf("TeamID = %v, want 3", id)
	}
}
