// Package store provides the user and catalog data access layer. The default
// backend is an in-memory table seeded with development data; a Postgres
// implementation of the same interface is available for real deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/educasem/educasem-api/internal/models"
)

// Sentinel errors shared by all UserStore implementations.
var (
	ErrNotFound       = errors.New("store: record not found")
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// UserStore abstracts user persistence. Email lookups are case-insensitive.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateProfile(ctx context.Context, id, name, avatar string, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
}
