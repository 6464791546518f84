package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/models"
)

func TestSeededPasswordVerifies(t *testing.T) {
	s := NewSeededMemoryStore()

	admin, err := s.FindByEmail(context.Background(), "admin@educasem.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(SeedPassword)))
}

func TestSeededMemoryStoreAccounts(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	admin, err := s.FindByEmail(ctx, "admin@educasem.com")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)

	_, total, err := s.List(ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	unverified, err := s.FindByID(ctx, "5")
	require.NoError(t, err)
	assert.False(t, unverified.EmailVerified)
}

func TestMemoryStoreFindByEmailCaseInsensitive(t *testing.T) {
	s := NewSeededMemoryStore()

	user, err := s.FindByEmail(context.Background(), "  ADMIN@Educasem.COM ")
	require.NoError(t, err)
	assert.Equal(t, "admin@educasem.com", user.Email)

	_, err = s.FindByEmail(context.Background(), "nobody@educasem.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	user := &models.User{Email: "new@educasem.com", Name: "Nuevo Usuario", Role: models.RoleStudent, Active: true}
	require.NoError(t, s.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	dup := &models.User{Email: "NEW@educasem.com", Name: "Otro"}
	assert.ErrorIs(t, s.Create(ctx, dup), ErrDuplicateEmail)

	found, err := s.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@educasem.com", found.Email)
}

func TestMemoryStoreMutationsReturnCopies(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	first, err := s.FindByID(ctx, "1")
	require.NoError(t, err)
	first.Name = "mutated"

	again, err := s.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Admin Usuario", again.Name)
}

func TestMemoryStoreListFilters(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	role := models.RoleInstructor
	instructors, total, err := s.List(ctx, models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, instructors, 2)

	found, total, err := s.List(ctx, models.UserFilter{Search: "garcía"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "María García", found[0].Name)
}

func TestMemoryStoreListPagination(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	page1, total, err := s.List(ctx, models.UserFilter{Page: 1, PageSize: 2, SortBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page1, 2)

	page3, total, err := s.List(ctx, models.UserFilter{Page: 3, PageSize: 2, SortBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page3, 1)

	beyond, total, err := s.List(ctx, models.UserFilter{Page: 10, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, beyond)
}

func TestMemoryStoreListSortOrder(t *testing.T) {
	s := NewSeededMemoryStore()

	users, _, err := s.List(context.Background(), models.UserFilter{SortBy: "email", SortOrder: "DESC"})
	require.NoError(t, err)
	require.NotEmpty(t, users)
	assert.Equal(t, "instructor@educasem.com", users[0].Email)
}

func TestMemoryStoreSetActiveAndUpdatePassword(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetActive(ctx, "3", false))
	user, err := s.FindByID(ctx, "3")
	require.NoError(t, err)
	assert.False(t, user.Active)

	assert.ErrorIs(t, s.SetActive(ctx, "missing", true), ErrNotFound)

	require.NoError(t, s.UpdatePassword(ctx, "3", "newhash", user.UpdatedAt))
	user, err = s.FindByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "newhash", user.PasswordHash)

	assert.ErrorIs(t, s.UpdatePassword(ctx, "missing", "x", user.UpdatedAt), ErrNotFound)
}

func TestMemoryStoreUpdateProfile(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateProfile(ctx, "3", "María G. Pérez", "/images/avatars/new.jpg", ts))

	user, err := s.FindByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "María G. Pérez", user.Name)
	assert.Equal(t, "/images/avatars/new.jpg", user.Avatar)
	assert.Equal(t, ts, user.UpdatedAt)

	assert.ErrorIs(t, s.UpdateProfile(ctx, "missing", "x", "", ts), ErrNotFound)
}
