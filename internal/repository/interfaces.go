// Package repository defines data access interfaces for Taskdeck.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL for deployments, SQLite for embedded and
// test use) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Task Repository
// =============================================================================

// TaskFilter contains optional equality filters for task queries.
// Nil fields are not applied. The same filter is shared by List and Count
// so the reported total always matches the filtered set.
type TaskFilter struct {
	// OwnerID restricts results to tasks owned by this user.
	OwnerID *int64

	// Status restricts results to tasks in this workflow state.
	Status *domain.TaskStatus
}

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	// Create creates a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns tasks matching the filter in insertion order,
	// with pagination applied.
	List(ctx context.Context, filter TaskFilter, opts ListOptions) ([]*domain.Task, error)

	// Count returns the number of tasks matching the filter.
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// Update updates an existing task.
	Update(ctx context.Context, task *domain.Task) error

	// Delete deletes a task by ID.
	Delete(ctx context.Context, id int64) error
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
