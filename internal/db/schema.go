package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

type dialect struct {
	primaryKey string
	timestamp  string
}

var dialects = map[string]dialect{
	DialectPostgres: {primaryKey: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"},
	DialectSQLite:   {primaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP"},
}

// {pk} and {ts} are replaced with the dialect's primary key and timestamp types.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id {pk},
  username TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  created_at {ts} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS teams (
  id {pk},
  uuid TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at {ts} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS team_memberships (
  id {pk},
  uuid TEXT NOT NULL UNIQUE,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
  joined_at {ts} NOT NULL,
  UNIQUE (user_id, team_id)
)`,
	`CREATE TABLE IF NOT EXISTS statuses (
  id {pk},
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  team_id BIGINT REFERENCES teams(id) ON DELETE CASCADE,
  creator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at {ts} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS labels (
  id {pk},
  name TEXT NOT NULL,
  team_id BIGINT REFERENCES teams(id) ON DELETE CASCADE,
  creator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at {ts} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS tasks (
  id {pk},
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  team_id BIGINT REFERENCES teams(id) ON DELETE RESTRICT,
  status_id BIGINT NOT NULL REFERENCES statuses(id) ON DELETE RESTRICT,
  author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at {ts} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS task_executors (
  task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (task_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS task_labels (
  task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  label_id BIGINT NOT NULL REFERENCES labels(id) ON DELETE RESTRICT,
  PRIMARY KEY (task_id, label_id)
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  data TEXT NOT NULL DEFAULT '{}',
  created_at {ts} NOT NULL,
  expires_at {ts} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_team ON team_memberships(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_statuses_team ON statuses(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_labels_team ON labels(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_team ON tasks(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_author ON tasks(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_executors_user ON task_executors(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_labels_label ON task_labels(label_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, conn *sql.DB, dialectName string) error {
	d, ok := dialects[dialectName]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialectName)
	}
	replacer := strings.NewReplacer("{pk}", d.primaryKey, "{ts}", d.timestamp)
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, replacer.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
