package auth

import "github.com/taskdeck/taskdeck/internal/domain"

// CanAccessTask reports whether the caller may read or modify the given task.
// Admins may access any task; regular users only their own.
func CanAccessTask(identity *Identity, task *domain.Task) bool {
	if identity == nil {
		return false
	}
	if identity.IsAdmin() {
		return true
	}
	return task.OwnerID == identity.UserID
}
