package models

import "time"

// Status is owned either by a team (TeamID set) or by its creator alone.
type Status struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	TeamID      *int64    `json:"-"`
	CreatorID   int64     `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultStatuses are seeded for every new user and every new team.
var DefaultStatuses = []Status{
	{Name: "To Do", Description: "Task is planned but not started", Color: "#6c757d"},
	{Name: "In Progress", Description: "Task is being worked on", Color: "#0d6efd"},
	{Name: "On Hold", Description: "Task is paused", Color: "#ffc107"},
	{Name: "Completed", Description: "Task is done", Color: "#198754"},
	{Name: "Cancelled", Description: "Task will not be done", Color: "#212529"},
	{Name: "Blocked", Description: "Task cannot proceed", Color: "#dc3545"},
}
