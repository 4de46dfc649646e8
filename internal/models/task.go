package models

import (
	"slices"
	"time"
)

type Task struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TeamID      *int64    `json:"-"`
	StatusID    int64     `json:"status_id"`
	AuthorID    int64     `json:"author_id"`
	ExecutorIDs []int64   `json:"executor_ids"`
	LabelIDs    []int64   `json:"label_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Task) HasExecutor(userID int64) bool {
	return slices.Contains(t.ExecutorIDs, userID)
}
