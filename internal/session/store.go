// Package session keeps per-login key-value state on the server side.
package session

const (
	// KeyActiveTeam holds the UUID of the team selected as workspace.
	KeyActiveTeam = "active_team"
	// KeySavedFilter holds the saved task filter as a JSON object.
	KeySavedFilter = "saved_filter"
	// KeySavedFilterEnabled is "true" while the saved filter applies by default.
	KeySavedFilterEnabled = "saved_filter_enabled"
)

// Store is the narrow view of session state the core depends on.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear(key string)
}

// Memory is a Store backed by a plain map.
type Memory map[string]string

func (m Memory) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Memory) Set(key, value string) {
	m[key] = value
}

func (m Memory) Clear(key string) {
	delete(m, key)
}
