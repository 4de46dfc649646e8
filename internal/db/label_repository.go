package db

import (
	"context"

	"github.com/chepyr/team-tracker/internal/models"
)

type LabelRepository struct {
	db DBTX
}

func NewLabelRepository(db DBTX) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, l *models.Label) error {
	query := `INSERT INTO labels (name, team_id, creator_id, created_at)
	 VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, l.Name, l.TeamID, l.CreatorID, l.CreatedAt).Scan(&l.ID)
	return translate(err)
}

func (r *LabelRepository) GetByID(ctx context.Context, id int64) (*models.Label, error) {
	query := `SELECT id, name, team_id, creator_id, created_at FROM labels WHERE id = $1`
	l := &models.Label{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.TeamID, &l.CreatorID, &l.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

func (r *LabelRepository) List(ctx context.Context, scope Scope) ([]*models.Label, error) {
	where, args := scope.clause("l", "creator_id", 1)
	query := `SELECT l.id, l.name, l.team_id, l.creator_id, l.created_at
	 FROM labels l WHERE ` + where + ` ORDER BY l.name, l.id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		l := &models.Label{}
		if err := rows.Scan(&l.ID, &l.Name, &l.TeamID, &l.CreatorID, &l.CreatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *LabelRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM task_labels WHERE label_id = $1)`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *LabelRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id))
}
