package model

import "time"

// Task is a single entry in a user's task list as served by the backend.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasDueDate reports whether the backend sent a due date for the task.
func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// IsOverdue reports whether the task is open and its due date lies strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.HasDueDate() && now.After(t.DueDate)
}

// DescriptionText returns the description or "" when unset.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

type CreateRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// UpdateRequest carries a partial update; nil fields are left untouched by the backend.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}
