package db

import (
	"fmt"
	"strings"
	"time"
)

type Field string

const (
	FieldStatus   Field = "status"
	FieldExecutor Field = "executor"
	FieldLabel    Field = "label"
	FieldAuthor   Field = "author"
)

// Condition is one AND-ed constraint. Exclude inverts it; for the
// many-to-many fields an excluded value drops every task whose set contains
// the value.
type Condition struct {
	Field   Field
	Value   int64
	Exclude bool
}

// TaskCriteria describes a task query: the workspace scope, field
// conditions and a creation-time window [CreatedFrom, CreatedUntil).
type TaskCriteria struct {
	Scope        Scope
	Conditions   []Condition
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
}

// where renders the criteria for the alias "t".
func (c TaskCriteria) where() (string, []any) {
	var parts []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.Scope.TeamID != nil {
		parts = append(parts, "t.team_id = "+next(*c.Scope.TeamID))
	} else {
		parts = append(parts, "t.team_id IS NULL", "t.author_id = "+next(c.Scope.UserID))
	}

	for _, cond := range c.Conditions {
		switch cond.Field {
		case FieldStatus:
			parts = append(parts, "t.status_id "+compare(cond.Exclude)+" "+next(cond.Value))
		case FieldAuthor:
			parts = append(parts, "t.author_id "+compare(cond.Exclude)+" "+next(cond.Value))
		case FieldExecutor:
			parts = append(parts, exists(cond.Exclude,
				"SELECT 1 FROM task_executors te WHERE te.task_id = t.id AND te.user_id = "+next(cond.Value)))
		case FieldLabel:
			parts = append(parts, exists(cond.Exclude,
				"SELECT 1 FROM task_labels tl WHERE tl.task_id = t.id AND tl.label_id = "+next(cond.Value)))
		}
	}

	if c.CreatedFrom != nil {
		parts = append(parts, "t.created_at >= "+next(c.CreatedFrom.UTC()))
	}
	if c.CreatedUntil != nil {
		parts = append(parts, "t.created_at < "+next(c.CreatedUntil.UTC()))
	}
	return strings.Join(parts, " AND "), args
}

func compare(exclude bool) string {
	if exclude {
		return "<>"
	}
	return "="
}

func exists(negate bool, subquery string) string {
	if negate {
		return "NOT EXISTS (" + subquery + ")"
	}
	return "EXISTS (" + subquery + ")"
}
