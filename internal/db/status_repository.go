package db

import (
	"context"
	"time"

	"github.com/chepyr/team-tracker/internal/models"
)

type StatusRepository struct {
	db DBTX
}

func NewStatusRepository(db DBTX) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Create(ctx context.Context, s *models.Status) error {
	query := `INSERT INTO statuses (name, description, color, team_id, creator_id, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(
		ctx, query, s.Name, s.Description, s.Color, s.TeamID, s.CreatorID, s.CreatedAt,
	).Scan(&s.ID)
	return translate(err)
}

// CreateDefaults seeds models.DefaultStatuses for a team (teamID set) or
// for an individual creator.
func (r *StatusRepository) CreateDefaults(ctx context.Context, teamID *int64, creatorID int64, at time.Time) error {
	for _, def := range models.DefaultStatuses {
		s := def
		s.TeamID = teamID
		s.CreatorID = creatorID
		s.CreatedAt = at
		if err := r.Create(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}

func (r *StatusRepository) GetByID(ctx context.Context, id int64) (*models.Status, error) {
	query := `SELECT id, name, description, color, team_id, creator_id, created_at FROM statuses WHERE id = $1`
	s := &models.Status{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Color, &s.TeamID, &s.CreatorID, &s.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func (r *StatusRepository) List(ctx context.Context, scope Scope) ([]*models.Status, error) {
	where, args := scope.clause("s", "creator_id", 1)
	query := `SELECT s.id, s.name, s.description, s.color, s.team_id, s.creator_id, s.created_at
	 FROM statuses s WHERE ` + where + ` ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*models.Status
	for rows.Next() {
		s := &models.Status{}
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Color, &s.TeamID, &s.CreatorID, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *StatusRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM tasks WHERE status_id = $1)`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

// Delete fails with ErrReferenced while a task still uses the status.
func (r *StatusRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id = $1`, id))
}
