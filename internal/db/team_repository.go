package db

import (
	"context"

	"github.com/chepyr/team-tracker/internal/models"
	"github.com/google/uuid"
)

type TeamRepository struct {
	db DBTX
}

func NewTeamRepository(db DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `t.id, t.uuid, t.name, t.password, t.description, t.created_at`

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.UUID == uuid.Nil {
		team.UUID = uuid.New()
	}
	query := `INSERT INTO teams (uuid, name, password, description, created_at)
	 VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(
		ctx, query, team.UUID, team.Name, team.Password, team.Description, team.CreatedAt,
	).Scan(&team.ID)
	return translate(err)
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	return r.scanOne(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id)
}

func (r *TeamRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return r.scanOne(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.uuid = $1`, id)
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	return r.scanOne(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.name = $1`, name)
}

// GetForMember returns the team only if userID is one of its members.
func (r *TeamRepository) GetForMember(ctx context.Context, userID int64, teamUUID uuid.UUID) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t
	 JOIN team_memberships m ON m.team_id = t.id
	 WHERE t.uuid = $1 AND m.user_id = $2`
	return r.scanOne(ctx, query, teamUUID, userID)
}

func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, password = $2, description = $3 WHERE id = $4`
	return mustAffect(r.db.ExecContext(ctx, query, team.Name, team.Password, team.Description, team.ID))
}

// Delete removes the team; memberships, statuses and labels cascade.
func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id))
}

func (r *TeamRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t
	 JOIN team_memberships m ON m.team_id = t.id
	 WHERE m.user_id = $1 ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(
			&team.ID, &team.UUID, &team.Name, &team.Password, &team.Description, &team.CreatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *TeamRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&team.ID, &team.UUID, &team.Name, &team.Password, &team.Description, &team.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return team, nil
}
