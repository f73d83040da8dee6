package domain

import "time"

// Todo is a single task. ID is assigned by the store on creation and never
// changes afterwards.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}
