package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
	"github.com/chepyr/team-tracker/internal/permission"
)

type StatusInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

const defaultColor = "#6c757d"

// SeedDefaultStatuses creates the default statuses for a team, or for
// creatorID alone when teamID is nil. store may be a transaction.
func SeedDefaultStatuses(ctx context.Context, store *db.Store, teamID *int64, creatorID int64, at time.Time) error {
	if err := store.Statuses.CreateDefaults(ctx, teamID, creatorID, at); err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}
	return nil
}

func (s *Service) CreateStatus(ctx context.Context, actor *models.User, ws models.WorkspaceContext, in StatusInput) (*models.Status, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "Status name is required")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = defaultColor
	}
	status := &models.Status{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		TeamID:      ws.TeamID(),
		CreatorID:   actor.ID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Statuses.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("create status: %w", err)
	}
	return status, nil
}

func (s *Service) ListStatuses(ctx context.Context, actor *models.User, ws models.WorkspaceContext) ([]*models.Status, error) {
	statuses, err := s.store.Statuses.List(ctx, db.ScopeOf(ws, actor.ID))
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return statuses, nil
}

// DeleteStatus refuses while any task uses the status.
func (s *Service) DeleteStatus(ctx context.Context, actor *models.User, ws models.WorkspaceContext, id int64) error {
	status, err := s.store.Statuses.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !ws.Owns(status.TeamID, status.CreatorID, actor.ID)) {
		return apperr.NotFoundf("status")
	}
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	d, err := s.gate.CanDeleteStatus(ctx, status)
	if err != nil {
		return err
	}
	if err := d.Err(); err != nil {
		return err
	}
	err = s.store.Statuses.Delete(ctx, status.ID)
	if errors.Is(err, db.ErrReferenced) {
		return permission.Deny(apperr.Integrity, permission.StatusInUse).Err()
	}
	if err != nil {
		return fmt.Errorf("delete status: %w", err)
	}
	return nil
}

func (s *Service) CreateLabel(ctx context.Context, actor *models.User, ws models.WorkspaceContext, name string) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "Label name is required")
	}
	label := &models.Label{
		Name:      name,
		TeamID:    ws.TeamID(),
		CreatorID: actor.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Labels.Create(ctx, label); err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}
	return label, nil
}

func (s *Service) ListLabels(ctx context.Context, actor *models.User, ws models.WorkspaceContext) ([]*models.Label, error) {
	labels, err := s.store.Labels.List(ctx, db.ScopeOf(ws, actor.ID))
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// DeleteLabel refuses while any task carries the label.
func (s *Service) DeleteLabel(ctx context.Context, actor *models.User, ws models.WorkspaceContext, id int64) error {
	label, err := s.store.Labels.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !ws.Owns(label.TeamID, label.CreatorID, actor.ID)) {
		return apperr.NotFoundf("label")
	}
	if err != nil {
		return fmt.Errorf("get label: %w", err)
	}
	d, err := s.gate.CanDeleteLabel(ctx, label)
	if err != nil {
		return err
	}
	if err := d.Err(); err != nil {
		return err
	}
	err = s.store.Labels.Delete(ctx, label.ID)
	if errors.Is(err, db.ErrReferenced) {
		return permission.Deny(apperr.Integrity, permission.LabelInUse).Err()
	}
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}
