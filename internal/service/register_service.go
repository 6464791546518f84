package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/store"
	"github.com/educasem/educasem-api/internal/validation"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/jobs"
)

// registrationBcryptCost matches the cost of the seeded account hashes.
const registrationBcryptCost = 12

// VerificationMail is the payload queued after a successful registration.
type VerificationMail struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type mailQueue interface {
	Enqueue(job jobs.Job) error
}

// RegisterService handles account creation.
type RegisterService struct {
	store     store.UserStore
	validator *validator.Validate
	logger    *zap.Logger
	mail      mailQueue
}

// NewRegisterService constructs a RegisterService. The mail queue may be nil,
// in which case no verification mail is dispatched.
func NewRegisterService(userStore store.UserStore, validate *validator.Validate, logger *zap.Logger, mail mailQueue) *RegisterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegisterService{store: userStore, validator: validate, logger: logger, mail: mail}
}

// Register validates the payload, enforces email uniqueness and creates the
// account with a bcrypt-hashed password and the default student role.
func (s *RegisterService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if fields := validateRegistration(req); len(fields) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fields)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), registrationBcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hash),
		Name:          fmt.Sprintf("%s %s", strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)),
		Role:          models.RoleStudent,
		EmailVerified: false,
		Active:        true,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, appErrors.ErrEmailTaken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.dispatchVerificationMail(user)

	return &models.RegisterResponse{
		UserID:  user.ID,
		Message: "registration successful",
	}, nil
}

// SendVerificationMail is the queue handler for verification mail jobs.
// Mail delivery is not implemented yet; the job is logged and acknowledged.
func (s *RegisterService) SendVerificationMail(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(VerificationMail)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	s.logger.Info("verification mail dispatched",
		zap.String("user_id", payload.UserID),
		zap.String("email", payload.Email))
	return nil
}

func (s *RegisterService) dispatchVerificationMail(user *models.User) {
	if s.mail == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "verification_mail",
		Payload: VerificationMail{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		},
	}
	if err := s.mail.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue verification mail", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// validateRegistration applies the field-specific rules and collects
// per-field error messages for inline display.
func validateRegistration(req models.RegisterRequest) map[string]string {
	fields := make(map[string]string)

	if !validation.ValidName(req.FirstName) {
		fields["first_name"] = "first name must contain only letters and be at least 2 characters"
	}
	if !validation.ValidName(req.LastName) {
		fields["last_name"] = "last name must contain only letters and be at least 2 characters"
	}
	if !validation.ValidEmail(req.Email) {
		fields["email"] = "invalid email format"
	}
	if !validation.ValidPhone(req.Phone) {
		fields["phone"] = "phone must contain at least 8 digits"
	}
	if ok, msg := validation.CheckPasswordStrength(req.Password); !ok {
		fields["password"] = msg
	}
	if req.Password != req.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}
	if birth, ok := validation.ParseBirthDate(req.BirthDate); !ok {
		fields["birth_date"] = "birth date must use the YYYY-MM-DD format"
	} else if ok, msg := validation.CheckAge(birth, time.Now()); !ok {
		fields["birth_date"] = msg
	}
	if strings.TrimSpace(req.Country) == "" {
		fields["country"] = "country is required"
	}

	return fields
}
