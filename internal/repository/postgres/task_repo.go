package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// taskRepository implements repository.TaskRepository for PostgreSQL.
type taskRepository struct {
	db *DB
}

// NewTaskRepository creates a new PostgreSQL task repository.
func NewTaskRepository(db *DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date, is_completed, owner_id, created_at, updated_at`

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, is_completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.IsCompleted,
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// scanTask scans a task row.
func scanTask(row pgx.Row) (*domain.Task, error) {
	task := &domain.Task{}
	var status, priority string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.IsCompleted,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return task, nil
}

// GetByID retrieves a task by ID.
func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}
	return task, nil
}

// filterClause builds the WHERE clause and arguments for a task filter.
// Placeholders start at $1; the returned next index continues from there.
func filterClause(filter repository.TaskFilter) (string, []interface{}, int) {
	var conds []string
	var args []interface{}
	next := 1

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", next))
		args = append(args, *filter.OwnerID)
		next++
	}
	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", next))
		args = append(args, string(*filter.Status))
		next++
	}

	if len(conds) == 0 {
		return "", nil, next
	}
	return " WHERE " + strings.Join(conds, " AND "), args, next
}

// List returns tasks matching the filter in insertion order, with pagination.
func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter, opts repository.ListOptions) ([]*domain.Task, error) {
	where, args, next := filterClause(filter)
	query := fmt.Sprintf(
		`SELECT `+taskColumns+` FROM tasks%s ORDER BY id LIMIT $%d OFFSET $%d`,
		where, next, next+1,
	)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Count returns the number of tasks matching the filter.
func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	where, args, _ := filterClause(filter)
	query := `SELECT COUNT(*) FROM tasks` + where

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// Update updates an existing task.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, is_completed = $6, updated_at = $7
		WHERE id = $8
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.IsCompleted,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a task by ID.
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure taskRepository implements repository.TaskRepository.
var _ repository.TaskRepository = (*taskRepository)(nil)
