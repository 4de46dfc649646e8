package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SessionRecord is the stored form of a login session. Data holds the
// session's key-value state.
type SessionRecord struct {
	ID        string
	UserID    int64
	Data      map[string]string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *SessionRecord) error {
	data, err := encodeSessionData(s.Data)
	if err != nil {
		return err
	}
	query := `INSERT INTO sessions (id, user_id, data, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query, s.ID, s.UserID, data, s.CreatedAt, s.ExpiresAt)
	return translate(err)
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*SessionRecord, error) {
	query := `SELECT id, user_id, data, created_at, expires_at FROM sessions WHERE id = $1`
	s := &SessionRecord{}
	var data string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &data, &s.CreatedAt, &s.ExpiresAt); err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	return s, nil
}

func (r *SessionRepository) Save(ctx context.Context, id string, values map[string]string) error {
	data, err := encodeSessionData(values)
	if err != nil {
		return err
	}
	return mustAffect(r.db.ExecContext(ctx, `UPDATE sessions SET data = $1 WHERE id = $2`, data, id))
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions that expired before now and returns how
// many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func encodeSessionData(values map[string]string) (string, error) {
	if values == nil {
		values = map[string]string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(data), nil
}
