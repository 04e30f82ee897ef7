package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// newTestDB opens an in-memory database with migrations applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), DefaultConfig(":memory:"), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, repo repository.UserRepository, username, email string) *domain.User {
	t.Helper()
	user := domain.NewUser(username, email, "hash-"+username)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice", "alice@example.com")
	if user.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.Role != domain.RoleUser || !got.IsActive {
		t.Errorf("unexpected defaults: role=%s active=%t", got.Role, got.IsActive)
	}

	if _, err := repo.GetByUsername(ctx, "alice"); err != nil {
		t.Errorf("GetByUsername failed: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "alice@example.com"); err != nil {
		t.Errorf("GetByEmail failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, repo, "alice", "alice@example.com")

	dupUsername := domain.NewUser("alice", "other@example.com", "hash")
	if err := repo.Create(ctx, dupUsername); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for username, got %v", err)
	}

	dupEmail := domain.NewUser("bob", "alice@example.com", "hash")
	if err := repo.Create(ctx, dupEmail); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for email, got %v", err)
	}
}

func TestUserRepository_Exists(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, repo, "alice", "alice@example.com")

	cases := []struct {
		check func() (bool, error)
		want  bool
	}{
		{func() (bool, error) { return repo.ExistsByUsername(ctx, "alice") }, true},
		{func() (bool, error) { return repo.ExistsByUsername(ctx, "bob") }, false},
		{func() (bool, error) { return repo.ExistsByEmail(ctx, "alice@example.com") }, true},
		{func() (bool, error) { return repo.ExistsByEmail(ctx, "bob@example.com") }, false},
	}
	for i, c := range cases {
		got, err := c.check()
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != c.want {
			t.Errorf("case %d: expected %t, got %t", i, c.want, got)
		}
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice", "alice@example.com")

	user.Role = domain.RoleAdmin
	user.IsActive = false
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.IsActive {
		t.Errorf("update not persisted: role=%s active=%t", got.Role, got.IsActive)
	}

	missing := domain.NewUser("ghost", "ghost@example.com", "hash")
	missing.ID = 9999
	if err := repo.Update(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "alice", "alice@example.com")

	due := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	task := domain.NewTask("write report", owner.ID)
	task.Description = "quarterly numbers"
	task.Priority = domain.TaskPriorityHigh
	task.DueDate = &due

	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "write report" || got.Description != "quarterly numbers" {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.Status != domain.TaskStatusTodo || got.Priority != domain.TaskPriorityHigh {
		t.Errorf("unexpected status/priority: %s/%s", got.Status, got.Priority)
	}
	if got.IsCompleted {
		t.Error("new task should not be completed")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date not round-tripped: %v", got.DueDate)
	}

	if _, err := tasks.GetByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_NullDueDate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "alice", "alice@example.com")
	task := domain.NewTask("no deadline", owner.ID)

	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.DueDate != nil {
		t.Errorf("expected nil due date, got %v", got.DueDate)
	}
}

func TestTaskRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice", "alice@example.com")
	bob := createTestUser(t, users, "bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		if err := tasks.Create(ctx, domain.NewTask("alice task", alice.ID)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	done := domain.NewTask("bob done", bob.ID)
	done.SetStatus(domain.TaskStatusCompleted)
	if err := tasks.Create(ctx, done); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Unfiltered.
	all, err := tasks.List(ctx, repository.TaskFilter{}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 tasks, got %d", len(all))
	}

	// Owner filter.
	filter := repository.TaskFilter{OwnerID: &alice.ID}
	mine, err := tasks.List(ctx, filter, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(mine))
	}
	count, err := tasks.Count(ctx, filter)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	// Status filter combined with owner.
	completed := domain.TaskStatusCompleted
	both := repository.TaskFilter{OwnerID: &bob.ID, Status: &completed}
	result, err := tasks.List(ctx, both, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(result) != 1 || !result[0].IsCompleted {
		t.Errorf("unexpected filtered result: %+v", result)
	}

	// Pagination keeps insertion order.
	page, err := tasks.List(ctx, repository.TaskFilter{}, repository.ListOptions{Offset: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != all[2].ID {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestTaskRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "alice", "alice@example.com")
	task := domain.NewTask("task", owner.ID)
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	task.Title = "renamed"
	task.SetStatus(domain.TaskStatusCompleted)
	if err := tasks.Update(ctx, task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "renamed" || got.Status != domain.TaskStatusCompleted || !got.IsCompleted {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}

	ghost := domain.NewTask("ghost", owner.ID)
	ghost.ID = 9999
	if err := tasks.Update(ctx, ghost); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_OwnerCascade(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "alice", "alice@example.com")
	task := domain.NewTask("task", owner.ID)
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Deleting the owner row cascades to their tasks.
	if _, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, owner.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected task to be cascade-deleted, got %v", err)
	}
}
