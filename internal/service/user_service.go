package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/store"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/export"
)

// UserService covers the admin user-management surface.
type UserService struct {
	store  store.UserStore
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(userStore store.UserStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: userStore, logger: logger}
}

// List returns paginated public user views and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.PublicUser, *models.Pagination, error) {
	users, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	public := make([]models.PublicUser, len(users))
	for i := range users {
		public[i] = users[i].Public()
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return public, pagination, nil
}

// Get returns a user's public view by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	public := user.Public()
	return &public, nil
}

// SetActive toggles a user's active flag.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	s.logger.Info("user active flag updated", zap.String("user_id", id), zap.Bool("active", active))
	return nil
}

// ExportRoster renders the full user roster as CSV or PDF bytes. The second
// return value is the response content type.
func (s *UserService) ExportRoster(ctx context.Context, format string) ([]byte, string, error) {
	users, _, err := s.store.List(ctx, models.UserFilter{PageSize: 100})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Email", "Name", "Role", "Verified", "Active"},
	}
	for _, u := range users {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":       u.ID,
			"Email":    u.Email,
			"Name":     u.Name,
			"Role":     string(u.Role),
			"Verified": fmt.Sprintf("%t", u.EmailVerified),
			"Active":   fmt.Sprintf("%t", u.Active),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := export.CSV(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.PDF(dataset, "Educasem user roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
