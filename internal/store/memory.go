package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/models"
)

// SeedPassword is the shared password of every seeded development account.
const SeedPassword = "123456789"

// seededPasswordHash hashes SeedPassword once per process; hard-coding a hash
// here invites a constant that never verified against the password.
var seededPasswordHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), 12)
	if err != nil {
		panic(err)
	}
	return string(hash)
})

// MemoryStore is a mutex-guarded in-memory user table. It stands in for a
// real database in development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

// NewSeededMemoryStore returns a store preloaded with the development
// accounts. Every account's password is "123456789".
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	for _, u := range seedUsers() {
		user := u
		s.users[user.ID] = &user
	}
	return s
}

func seedUsers() []models.User {
	hash := seededPasswordHash()
	return []models.User{
		{
			ID:            "1",
			Email:         "admin@educasem.com",
			PasswordHash:  hash,
			Name:          "Admin Usuario",
			Role:          models.RoleAdmin,
			Avatar:        "/images/avatars/admin.jpg",
			EmailVerified: true,
			Active:        true,
			CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "2",
			Email:         "instructor@educasem.com",
			PasswordHash:  hash,
			Name:          "Carlos Mendez",
			Role:          models.RoleInstructor,
			Avatar:        "/images/avatars/instructor.jpg",
			EmailVerified: true,
			Active:        true,
			CreatedAt:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "3",
			Email:         "estudiante@educasem.com",
			PasswordHash:  hash,
			Name:          "María García",
			Role:          models.RoleStudent,
			Avatar:        "/images/avatars/student.jpg",
			EmailVerified: true,
			Active:        true,
			CreatedAt:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "4",
			Email:         "instructor2@educasem.com",
			PasswordHash:  hash,
			Name:          "Ana Rodriguez",
			Role:          models.RoleInstructor,
			Avatar:        "/images/avatars/instructor2.jpg",
			EmailVerified: true,
			Active:        true,
			CreatedAt:     time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "5",
			Email:         "estudiante2@educasem.com",
			PasswordHash:  hash,
			Name:          "Pedro López",
			Role:          models.RoleStudent,
			EmailVerified: false,
			Active:        true,
			CreatedAt:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

// FindByEmail returns the user with the given email, case-insensitively.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID returns the user with the given id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Create inserts a new user, enforcing email uniqueness.
func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == needle {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// List returns users matching the filter plus the total count before paging.
func (s *MemoryStore) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.User, 0, len(s.users))
	search := strings.ToLower(filter.Search)
	for _, u := range s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		matched = append(matched, *u)
	}

	sortUsers(matched, filter.SortBy, filter.SortOrder)
	total := len(matched)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []models.User{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// UpdateLastLogin records the last login timestamp.
func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &ts
	u.UpdatedAt = ts
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	return nil
}

// UpdateProfile refreshes the display name and avatar of a user.
func (s *MemoryStore) UpdateProfile(_ context.Context, id, name, avatar string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Name = name
	u.Avatar = avatar
	u.UpdatedAt = updatedAt
	return nil
}

// SetActive toggles the active flag of a user.
func (s *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func sortUsers(users []models.User, sortBy, sortOrder string) {
	desc := strings.EqualFold(sortOrder, "DESC")
	less := func(a, b models.User) bool {
		switch sortBy {
		case "email":
			return a.Email < b.Email
		case "name":
			return a.Name < b.Name
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		if desc {
			return less(users[j], users[i])
		}
		return less(users[i], users[j])
	})
}
