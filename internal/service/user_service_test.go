package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error

	// beforeCreate runs once before the uniqueness scan, simulating a
	// competing registration between the existence checks and the insert.
	beforeCreate func()
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook()
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var items []*domain.User
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			items = append(items, u)
		}
	}
	return &repository.ListResult[domain.User]{
		Items:  items,
		Total:  int64(len(items)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// seedUser adds a user with a bcrypt-hashed password.
func (m *MockUserRepository) seedUser(t *testing.T, username, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := domain.NewUser(username, email, string(hash))
	user.IsActive = active
	if err := m.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// =============================================================================
// Tests
// =============================================================================

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateUserInput
		wantErr   error
		setupRepo func(t *testing.T, m *MockUserRepository)
	}{
		{
			name: "success",
			input: CreateUserInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "password123",
			},
			wantErr: nil,
		},
		{
			name: "username too short",
			input: CreateUserInput{
				Username: "al",
				Email:    "alice@example.com",
				Password: "password123",
			},
			wantErr: ErrInvalidUsername,
		},
		{
			name: "invalid email",
			input: CreateUserInput{
				Username: "alice",
				Email:    "not-an-email",
				Password: "password123",
			},
			wantErr: ErrInvalidEmail,
		},
		{
			name: "password too short",
			input: CreateUserInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "short",
			},
			wantErr: ErrInvalidPassword,
		},
		{
			name: "duplicate email",
			input: CreateUserInput{
				Username: "newname",
				Email:    "taken@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrEmailTaken,
			setupRepo: func(t *testing.T, m *MockUserRepository) {
				m.seedUser(t, "existing", "taken@example.com", "password123", true)
			},
		},
		{
			name: "duplicate username",
			input: CreateUserInput{
				Username: "existing",
				Email:    "fresh@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrUsernameTaken,
			setupRepo: func(t *testing.T, m *MockUserRepository) {
				m.seedUser(t, "existing", "taken@example.com", "password123", true)
			},
		},
		{
			// 255 three-byte runes: at the limit despite being 765 bytes.
			name: "multibyte username counted in characters",
			input: CreateUserInput{
				Username: strings.Repeat("名", 255),
				Email:    "kanji@example.com",
				Password: "password123",
			},
			wantErr: nil,
		},
		{
			name: "multibyte username over the limit",
			input: CreateUserInput{
				Username: strings.Repeat("名", 256),
				Email:    "kanji@example.com",
				Password: "password123",
			},
			wantErr: ErrInvalidUsername,
		},
		{
			name: "email conflict wins when both taken",
			input: CreateUserInput{
				Username: "existing",
				Email:    "taken@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrEmailTaken,
			setupRepo: func(t *testing.T, m *MockUserRepository) {
				m.seedUser(t, "existing", "taken@example.com", "password123", true)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(t, repo)
			}

			svc := NewUserService(repo, zerolog.Nop())
			output, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if output.User.ID == 0 {
				t.Error("expected user to be assigned an ID")
			}
			if output.User.Role != domain.RoleUser {
				t.Errorf("expected default role user, got %s", output.User.Role)
			}
			if !output.User.IsActive {
				t.Error("expected new user to be active")
			}
			if output.User.PasswordHash == tt.input.Password {
				t.Error("password stored in plaintext")
			}
		})
	}
}

func TestUserService_Create_AdminRole(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewUserService(repo, zerolog.Nop())

	output, err := svc.Create(context.Background(), CreateUserInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "password123",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.User.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", output.User.Role)
	}
}

// A registration that loses the insert race still reports the field that
// actually collided, not unconditionally the username.
func TestUserService_Create_InsertRace(t *testing.T) {
	t.Run("email collision", func(t *testing.T) {
		repo := NewMockUserRepository()
		repo.beforeCreate = func() {
			repo.seedUser(t, "rival", "contested@example.com", "password123", true)
		}
		svc := NewUserService(repo, zerolog.Nop())

		_, err := svc.Create(context.Background(), CreateUserInput{
			Username: "alice",
			Email:    "contested@example.com",
			Password: "password123",
		})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Errorf("expected %v, got %v", domain.ErrEmailTaken, err)
		}
	})

	t.Run("username collision", func(t *testing.T) {
		repo := NewMockUserRepository()
		repo.beforeCreate = func() {
			repo.seedUser(t, "contested", "rival@example.com", "password123", true)
		}
		svc := NewUserService(repo, zerolog.Nop())

		_, err := svc.Create(context.Background(), CreateUserInput{
			Username: "contested",
			Email:    "alice@example.com",
			Password: "password123",
		})
		if !errors.Is(err, domain.ErrUsernameTaken) {
			t.Errorf("expected %v, got %v", domain.ErrUsernameTaken, err)
		}
	})
}

func TestUserService_Authenticate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "success",
			username: "alice",
			password: "correct-horse",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong-horse",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "nobody",
			password: "correct-horse",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			username: "mallory",
			password: "correct-horse",
			wantErr:  domain.ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			repo.seedUser(t, "alice", "alice@example.com", "correct-horse", true)
			repo.seedUser(t, "mallory", "mallory@example.com", "correct-horse", false)

			svc := NewUserService(repo, zerolog.Nop())
			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if user.Username != tt.username {
				t.Errorf("expected username %s, got %s", tt.username, user.Username)
			}
		})
	}
}

// Unknown-user and wrong-password failures must be indistinguishable so
// login responses cannot be used to probe for valid usernames.
func TestUserService_Authenticate_UniformFailure(t *testing.T) {
	repo := NewMockUserRepository()
	repo.seedUser(t, "alice", "alice@example.com", "correct-horse", true)
	svc := NewUserService(repo, zerolog.Nop())

	_, errUnknown := svc.Authenticate(context.Background(), "nobody", "correct-horse")
	_, errWrongPw := svc.Authenticate(context.Background(), "alice", "wrong-horse")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrongPw, domain.ErrInvalidCredentials) {
		t.Fatalf("expected both failures to be ErrInvalidCredentials, got %v and %v", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("failure messages differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
}

func TestUserService_SetActiveAndRole(t *testing.T) {
	repo := NewMockUserRepository()
	user := repo.seedUser(t, "alice", "alice@example.com", "correct-horse", true)
	svc := NewUserService(repo, zerolog.Nop())

	if err := svc.SetActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if repo.users[user.ID].IsActive {
		t.Error("expected user to be inactive")
	}

	if err := svc.SetRole(context.Background(), user.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	if repo.users[user.ID].Role != domain.RoleAdmin {
		t.Error("expected user to be admin")
	}

	if err := svc.SetActive(context.Background(), 999, true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
