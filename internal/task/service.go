// Package task manages tasks and the statuses and labels they use, always
// within the caller's current workspace.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/filter"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/permission"
	"github.com/chepyr/team-tracker/internal/session"
)

type Input struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StatusID    int64   `json:"status_id"`
	ExecutorIDs []int64 `json:"executor_ids"`
	LabelIDs    []int64 `json:"label_ids"`
}

type Service struct {
	store  *db.Store
	gate   *permission.Gate
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store *db.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gate: permission.NewGate(store), logger: logger, now: time.Now}
}

// Create adds a task authored by actor to the current workspace.
func (s *Service) Create(ctx context.Context, actor *models.User, ws models.WorkspaceContext, in Input) (*models.Task, error) {
	task := &models.Task{
		TeamID:    ws.TeamID(),
		AuthorID:  actor.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.apply(ctx, actor, ws, task, in); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx *db.Store) error {
		return tx.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", "task_id", task.ID, "author_id", actor.ID, "workspace", ws.Mode)
	return task, nil
}

// Get returns a task of the current workspace. Tasks elsewhere are reported
// as not found.
func (s *Service) Get(ctx context.Context, actor *models.User, ws models.WorkspaceContext, id int64) (*models.Task, error) {
	task, err := s.store.Tasks.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFoundf("task")
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := permission.CanViewTask(ws, actor, task).Err(); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, ws models.WorkspaceContext, id int64, in Input) (*models.Task, error) {
	task, err := s.Get(ctx, actor, ws, id)
	if err != nil {
		return nil, err
	}
	if err := permission.CanUpdateTask(actor, task).Err(); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, ws, task, in); err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(tx *db.Store) error {
		return tx.Tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, actor *models.User, ws models.WorkspaceContext, id int64) error {
	task, err := s.Get(ctx, actor, ws, id)
	if err != nil {
		return err
	}
	if err := permission.CanDeleteTask(actor, task).Err(); err != nil {
		return err
	}
	if err := s.store.Tasks.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info("task deleted", "task_id", task.ID, "actor_id", actor.ID)
	return nil
}

// List runs the filter engine over the workspace's tasks.
func (s *Service) List(ctx context.Context, actor *models.User, ws models.WorkspaceContext, params filter.Params, sess session.Store) ([]*models.Task, filter.View, error) {
	view := filter.Prepare(params, sess)
	tasks, err := s.store.Tasks.List(ctx, view.Filter.Criteria(ws, actor.ID))
	if err != nil {
		return nil, view, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, view, nil
}

// apply validates in against the workspace and copies it onto task.
func (s *Service) apply(ctx context.Context, actor *models.User, ws models.WorkspaceContext, task *models.Task, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Invalid("name", "Task name is required")
	}

	status, err := s.store.Statuses.GetByID(ctx, in.StatusID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !ws.Owns(status.TeamID, status.CreatorID, actor.ID)) {
		return apperr.Invalid("status_id", "Choose a status from this workspace")
	}
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	executors := unique(in.ExecutorIDs)
	if len(executors) == 0 {
		return apperr.Invalid("executor_ids", "Choose at least one executor")
	}
	for _, id := range executors {
		ok, err := s.inWorkspace(ctx, actor, ws, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Invalid("executor_ids", "Executors must belong to this workspace")
		}
	}

	labels := unique(in.LabelIDs)
	for _, id := range labels {
		label, err := s.store.Labels.GetByID(ctx, id)
		if errors.Is(err, db.ErrNotFound) || (err == nil && !ws.Owns(label.TeamID, label.CreatorID, actor.ID)) {
			return apperr.Invalid("label_ids", "Choose labels from this workspace")
		}
		if err != nil {
			return fmt.Errorf("get label: %w", err)
		}
	}

	task.Name = name
	task.Description = strings.TrimSpace(in.Description)
	task.StatusID = status.ID
	task.ExecutorIDs = executors
	task.LabelIDs = labels
	return nil
}

// inWorkspace reports whether userID can be assigned in ws: any team member,
// or only the actor in the individual workspace.
func (s *Service) inWorkspace(ctx context.Context, actor *models.User, ws models.WorkspaceContext, userID int64) (bool, error) {
	if !ws.IsTeam() {
		return userID == actor.ID, nil
	}
	_, err := s.store.Memberships.Get(ctx, userID, ws.Team.ID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check executor: %w", err)
	}
	return true, nil
}

func unique(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
