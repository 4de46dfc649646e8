package session

import (
	"maps"
	"time"
)

// Session is the state of one login. It records whether it changed so the
// manager only writes it back when needed.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time

	values map[string]string
	dirty  bool
	ended  bool
}

func newSession(id string, userID int64, expiresAt time.Time, values map[string]string) *Session {
	if values == nil {
		values = map[string]string{}
	}
	return &Session{ID: id, UserID: userID, ExpiresAt: expiresAt, values: values}
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

func (s *Session) Clear(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

func (s *Session) Dirty() bool {
	return s.dirty
}

// Values returns a copy of the stored values.
func (s *Session) Values() map[string]string {
	return maps.Clone(s.values)
}
