package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// Default and maximum page sizes for task listings.
const (
	DefaultTaskPageSize = 10
	MaxTaskPageSize     = 100
)

// TaskService handles task CRUD with ownership enforcement.
// Every operation takes the caller's identity and applies the access
// policy internally, so handlers never make authorization decisions.
type TaskService struct {
	taskRepo repository.TaskRepository
	logger   zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger.With().Str("service", "task").Logger(),
	}
}

// CreateTaskInput contains the data needed to create a task.
// Status and Priority are optional; zero values select the defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// Create creates a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller *auth.Identity, input CreateTaskInput) (*domain.Task, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	if n := utf8.RuneCountInString(input.Title); n < 1 || n > domain.MaxTaskTitleLength {
		return nil, domain.ErrTaskTitleLength
	}

	task := domain.NewTask(input.Title, caller.UserID)
	task.Description = input.Description
	task.DueDate = input.DueDate

	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidTaskStatus
		}
		task.SetStatus(input.Status)
	}
	if input.Priority != "" {
		if !input.Priority.Valid() {
			return nil, domain.ErrInvalidTaskPriority
		}
		task.Priority = input.Priority
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", caller.UserID).Msg("failed to create task")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("owner_id", task.OwnerID).
		Msg("task created")

	return task, nil
}

// Get retrieves a single task, enforcing the ownership policy.
// A task that exists but belongs to someone else yields ErrAccessDenied,
// never ErrTaskNotFound, so 403 and 404 stay distinguishable.
func (s *TaskService) Get(ctx context.Context, caller *auth.Identity, id int64) (*domain.Task, error) {
	task, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasksInput contains pagination and filter options for listing tasks.
type ListTasksInput struct {
	Skip   int
	Limit  int
	Status *domain.TaskStatus
}

// ListTasksOutput contains one page of tasks and the total match count.
type ListTasksOutput struct {
	Tasks    []*domain.Task
	Total    int64
	Page     int
	PageSize int
}

// List returns a page of tasks. Non-admin callers only ever see their
// own tasks regardless of any filter; admins see all tasks.
func (s *TaskService) List(ctx context.Context, caller *auth.Identity, input ListTasksInput) (*ListTasksOutput, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	if input.Skip < 0 {
		input.Skip = 0
	}
	if input.Limit <= 0 {
		input.Limit = DefaultTaskPageSize
	}
	if input.Limit > MaxTaskPageSize {
		input.Limit = MaxTaskPageSize
	}

	filter := repository.TaskFilter{Status: input.Status}
	if !caller.IsAdmin() {
		ownerID := caller.UserID
		filter.OwnerID = &ownerID
	}

	tasks, err := s.taskRepo.List(ctx, filter, repository.ListOptions{
		Offset: input.Skip,
		Limit:  input.Limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list tasks")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	total, err := s.taskRepo.Count(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count tasks")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListTasksOutput{
		Tasks:    tasks,
		Total:    total,
		Page:     input.Skip/input.Limit + 1,
		PageSize: input.Limit,
	}, nil
}

// TaskPatch describes a sparse update: nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// Update applies a sparse patch to a task, enforcing the ownership policy.
func (s *TaskService) Update(ctx context.Context, caller *auth.Identity, id int64, patch TaskPatch) (*domain.Task, error) {
	task, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if n := utf8.RuneCountInString(*patch.Title); n < 1 || n > domain.MaxTaskTitleLength {
			return nil, domain.ErrTaskTitleLength
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, domain.ErrInvalidTaskStatus
		}
		// SetStatus keeps is_completed in step with the status.
		task.SetStatus(*patch.Status)
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, domain.ErrInvalidTaskPriority
		}
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Int64("task_id", id).Msg("failed to update task")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", caller.UserID).
		Msg("task updated")

	return task, nil
}

// Delete removes a task, enforcing the ownership policy.
func (s *TaskService) Delete(ctx context.Context, caller *auth.Identity, id int64) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Int64("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("task_id", id).
		Int64("user_id", caller.UserID).
		Msg("task deleted")

	return nil
}

// load fetches a task and runs the access policy. Existence is checked
// before access so a missing task is always a not-found, and a foreign
// task is always an access-denied.
func (s *TaskService) load(ctx context.Context, caller *auth.Identity, id int64) (*domain.Task, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Int64("task_id", id).Msg("failed to get task")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !auth.CanAccessTask(caller, task) {
		return nil, domain.ErrAccessDenied
	}

	return task, nil
}
