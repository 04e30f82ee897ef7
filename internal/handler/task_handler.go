package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/service"
)

// TaskHandler handles task CRUD endpoints.
type TaskHandler struct {
	tasks  *service.TaskService
	logger zerolog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With().Str("handler", "task").Logger(),
	}
}

// createTaskRequest is the request body for creating a task.
type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// updateTaskRequest is the request body for updating a task.
// Absent fields leave the stored value untouched. The completed flag is
// derived from status and cannot be set directly.
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// taskListResponse is the paginated task listing response.
type taskListResponse struct {
	Tasks    []*domain.Task `json:"tasks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Create handles POST /tasks/.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeValidationError(w, map[string]string{"title": "required"})
		return
	}

	task, err := h.tasks.Create(r.Context(), identity, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /tasks/.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	input := service.ListTasksInput{
		Skip:  0,
		Limit: service.DefaultTaskPageSize,
	}

	query := r.URL.Query()
	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			writeValidationError(w, map[string]string{"skip": "must be a non-negative integer"})
			return
		}
		input.Skip = skip
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > service.MaxTaskPageSize {
			writeValidationError(w, map[string]string{"limit": "must be between 1 and 100"})
			return
		}
		input.Limit = limit
	}
	if raw := query.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.Valid() {
			writeValidationError(w, map[string]string{"status": "must be one of todo, in_progress, completed"})
			return
		}
		input.Status = &status
	}

	out, err := h.tasks.List(r.Context(), identity, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if out.Tasks == nil {
		out.Tasks = []*domain.Task{}
	}
	writeJSON(w, http.StatusOK, taskListResponse{
		Tasks:    out.Tasks,
		Total:    out.Total,
		Page:     out.Page,
		PageSize: out.PageSize,
	})
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, domain.ErrTaskNotFound)
		return
	}

	task, err := h.tasks.Get(r.Context(), identity, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, domain.ErrTaskNotFound)
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	task, err := h.tasks.Update(r.Context(), identity, id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, domain.ErrTaskNotFound)
		return
	}

	if err := h.tasks.Delete(r.Context(), identity, id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskID parses the {id} URL parameter.
func taskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
