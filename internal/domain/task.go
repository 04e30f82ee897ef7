package domain

import (
	"time"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	// TaskStatusTodo is the initial state of a task.
	TaskStatusTodo TaskStatus = "todo"

	// TaskStatusInProgress marks a task as being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted marks a task as finished.
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid returns true if the priority is a known value.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

const (
	// MaxTaskTitleLength is the maximum length of a task title.
	MaxTaskTitleLength = 200
)

// Task represents a unit of work owned by exactly one user.
type Task struct {
	// ID is the unique identifier for the task (auto-generated).
	ID int64 `json:"id"`

	// Title is the short summary of the task.
	// Constraints: 1-200 characters.
	Title string `json:"title"`

	// Description is an optional longer explanation of the task.
	Description string `json:"description"`

	// Status is the workflow state (todo, in_progress, completed).
	Status TaskStatus `json:"status"`

	// Priority is the urgency (low, medium, high).
	Priority TaskPriority `json:"priority"`

	// DueDate is the optional deadline for the task.
	DueDate *time.Time `json:"due_date"`

	// IsCompleted mirrors Status == completed. It is derived and is
	// recomputed on every status change, never set independently.
	IsCompleted bool `json:"is_completed"`

	// OwnerID is the ID of the user who owns this task.
	OwnerID int64 `json:"owner_id"`

	// CreatedAt is the timestamp when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the task was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task with default status and priority.
func NewTask(title string, ownerID int64) *Task {
	now := time.Now().UTC()
	t := &Task{
		Title:     title,
		Status:    TaskStatusTodo,
		Priority:  TaskPriorityMedium,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.SetStatus(t.Status)
	return t
}

// SetStatus changes the task status and re-derives IsCompleted.
// All status writes must go through here to keep the two fields consistent.
func (t *Task) SetStatus(status TaskStatus) {
	t.Status = status
	t.IsCompleted = status == TaskStatusCompleted
}
