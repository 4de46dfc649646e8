package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/chepyr/team-tracker/internal/models"
)

// TaskRepository writes a task row together with its executor and label
// sets; callers run Create and Update inside Store.InTx.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.name, t.description, t.team_id, t.status_id, t.author_id, t.created_at`

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (name, description, team_id, status_id, author_id, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(
		ctx, query, task.Name, task.Description, task.TeamID, task.StatusID, task.AuthorID, task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		return translate(err)
	}
	return r.writeRelations(ctx, task)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id).Scan(
		&task.ID, &task.Name, &task.Description, &task.TeamID, &task.StatusID, &task.AuthorID, &task.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if err := r.loadRelations(ctx, []*models.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// Update rewrites name, description and status and replaces the executor
// and label sets.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET name = $1, description = $2, status_id = $3 WHERE id = $4`
	if err := mustAffect(r.db.ExecContext(ctx, query, task.Name, task.Description, task.StatusID, task.ID)); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_executors WHERE task_id = $1`, task.ID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = $1`, task.ID); err != nil {
		return err
	}
	return r.writeRelations(ctx, task)
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

// List returns the tasks matching c, newest first.
func (r *TaskRepository) List(ctx context.Context, c TaskCriteria) ([]*models.Task, error) {
	where, args := c.where()
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE ` + where + ` ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.Name, &task.Description, &task.TeamID, &task.StatusID, &task.AuthorID, &task.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// HasParticipant reports whether userID authors or executes any task of the team.
func (r *TaskRepository) HasParticipant(ctx context.Context, userID, teamID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
	  SELECT 1 FROM tasks t WHERE t.team_id = $1 AND (
	    t.author_id = $2 OR EXISTS (
	      SELECT 1 FROM task_executors te WHERE te.task_id = t.id AND te.user_id = $2)))`
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&exists)
	return exists, err
}

func (r *TaskRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE team_id = $1`, teamID).Scan(&n)
	return n, err
}

func (r *TaskRepository) writeRelations(ctx context.Context, task *models.Task) error {
	for _, userID := range task.ExecutorIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO task_executors (task_id, user_id) VALUES ($1, $2)`, task.ID, userID); err != nil {
			return translate(err)
		}
	}
	for _, labelID := range task.LabelIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2)`, task.ID, labelID); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (r *TaskRepository) loadRelations(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Task, len(tasks))
	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i, task := range tasks {
		task.ExecutorIDs = []int64{}
		task.LabelIDs = []int64{}
		byID[task.ID] = task
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = task.ID
	}
	in := strings.Join(placeholders, ", ")

	if err := r.collect(ctx,
		`SELECT task_id, user_id FROM task_executors WHERE task_id IN (`+in+`) ORDER BY user_id`, args,
		func(task *models.Task, id int64) { task.ExecutorIDs = append(task.ExecutorIDs, id) }, byID); err != nil {
		return fmt.Errorf("load executors: %w", err)
	}
	if err := r.collect(ctx,
		`SELECT task_id, label_id FROM task_labels WHERE task_id IN (`+in+`) ORDER BY label_id`, args,
		func(task *models.Task, id int64) { task.LabelIDs = append(task.LabelIDs, id) }, byID); err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	return nil
}

func (r *TaskRepository) collect(
	ctx context.Context, query string, args []any,
	add func(*models.Task, int64), byID map[int64]*models.Task,
) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var taskID, id int64
		if err := rows.Scan(&taskID, &id); err != nil {
			return err
		}
		if task, ok := byID[taskID]; ok {
			add(task, id)
		}
	}
	return rows.Err()
}
