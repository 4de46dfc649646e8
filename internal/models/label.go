package models

import "time"

type Label struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TeamID    *int64    `json:"-"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}
