package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a user with the same email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken indicates a user with the same username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserInactive indicates the user account is disabled.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	// Unknown usernames and wrong passwords both map here so the
	// response cannot be used to probe which usernames exist.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ===========================================
	// Task Errors
	// ===========================================

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskTitleLength indicates the task title length is invalid (1-200 chars).
	ErrTaskTitleLength = errors.New("task title must be between 1 and 200 characters")

	// ErrInvalidTaskStatus indicates an unknown task status value.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority indicates an unknown task priority value.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ===========================================
	// Authentication/Authorization Errors
	// ===========================================

	// ErrUnauthenticated indicates the request carries no valid identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAccessDenied indicates the caller is authenticated but the
	// ownership/role policy forbids the operation.
	ErrAccessDenied = errors.New("access denied")
)
