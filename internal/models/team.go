package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Team groups users that share tasks, statuses and labels.
// Password is compared as stored when someone joins; it is never hashed.
type Team struct {
	ID          int64     `json:"-"`
	UUID        uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Password    string    `json:"-"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole accepts only the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type Membership struct {
	ID       int64     `json:"-"`
	UUID     uuid.UUID `json:"id"`
	UserID   int64     `json:"user_id"`
	TeamID   int64     `json:"-"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// Member is a membership joined with the user it belongs to.
type Member struct {
	Membership
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}
