package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chepyr/team-tracker/internal/apperr"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/google/uuid"
)

// Repository persists sessions. *db.SessionRepository implements it.
type Repository interface {
	Create(ctx context.Context, s *db.SessionRecord) error
	Get(ctx context.Context, id string) (*db.SessionRecord, error)
	Save(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Manager struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewManager(repo Repository, ttl time.Duration) *Manager {
	return &Manager{repo: repo, ttl: ttl, now: time.Now}
}

// Start opens a new empty session for userID. Every login gets its own
// session, so two logins of one user never share state.
func (m *Manager) Start(ctx context.Context, userID int64) (*Session, error) {
	now := m.now().UTC()
	rec := &db.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Data:      map[string]string{},
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return newSession(rec.ID, rec.UserID, rec.ExpiresAt, rec.Data), nil
}

// Load returns the session id if it exists, has not expired and belongs to
// userID. Anything else is reported as NotAuthenticated.
func (m *Manager) Load(ctx context.Context, id string, userID int64) (*Session, error) {
	rec, err := m.repo.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Unauthenticated()
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec.UserID != userID || !m.now().Before(rec.ExpiresAt) {
		return nil, apperr.Unauthenticated()
	}
	return newSession(rec.ID, rec.UserID, rec.ExpiresAt, rec.Data), nil
}

// Save writes the session back if it changed.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s.ended || !s.Dirty() {
		return nil
	}
	if err := m.repo.Save(ctx, s.ID, s.values); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.dirty = false
	return nil
}

// End deletes the session. Later saves of s are no-ops.
func (m *Manager) End(ctx context.Context, s *Session) error {
	if err := m.repo.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.ended = true
	return nil
}

// Sweep removes expired sessions.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now().UTC())
}
