package db

import (
	"context"

	"github.com/chepyr/team-tracker/internal/models"
	"github.com/google/uuid"
)

type MembershipRepository struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const membershipColumns = `m.id, m.uuid, m.user_id, m.team_id, m.role, m.joined_at`

// Create inserts the membership. A second membership for the same
// (user, team) pair fails with ErrDuplicate.
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	query := `INSERT INTO team_memberships (uuid, user_id, team_id, role, joined_at)
	 VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, m.UUID, m.UserID, m.TeamID, string(m.Role), m.JoinedAt).Scan(&m.ID)
	return translate(err)
}

func (r *MembershipRepository) Get(ctx context.Context, userID, teamID int64) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM team_memberships m WHERE m.user_id = $1 AND m.team_id = $2`
	return r.scanOne(ctx, query, userID, teamID)
}

func (r *MembershipRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM team_memberships m WHERE m.uuid = $1`
	return r.scanOne(ctx, query, id)
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	query := `UPDATE team_memberships SET role = $1 WHERE id = $2`
	return mustAffect(r.db.ExecContext(ctx, query, string(role), id))
}

func (r *MembershipRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM team_memberships WHERE id = $1`, id))
}

// CountByRole counts the team's memberships holding role.
func (r *MembershipRepository) CountByRole(ctx context.Context, teamID int64, role models.Role) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM team_memberships WHERE team_id = $1 AND role = $2`
	err := r.db.QueryRowContext(ctx, query, teamID, string(role)).Scan(&n)
	return n, err
}

// ListMembers returns the team's members ordered by join time.
func (r *MembershipRepository) ListMembers(ctx context.Context, teamID int64) ([]*models.Member, error) {
	query := `SELECT ` + membershipColumns + `, u.username, u.display_name
	 FROM team_memberships m JOIN users u ON u.id = m.user_id
	 WHERE m.team_id = $1 ORDER BY m.joined_at, m.id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var role string
		if err := rows.Scan(
			&member.ID, &member.UUID, &member.UserID, &member.TeamID, &role, &member.JoinedAt,
			&member.Username, &member.DisplayName,
		); err != nil {
			return nil, err
		}
		member.Role = models.Role(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MembershipRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Membership, error) {
	m := &models.Membership{}
	var role string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.UUID, &m.UserID, &m.TeamID, &role, &m.JoinedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	m.Role = models.Role(role)
	return m, nil
}
