package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user. Credentials are
// transient: they are never persisted and discarded after verification.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued session token and public user view.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expires_in"`
	IssuedAt  time.Time  `json:"issued_at"`
	User      PublicUser `json:"user"`
}

// SessionClaims is the signed session token payload.
type SessionClaims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	Avatar        string `json:"avatar,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// SessionUser shapes the externally visible session object.
type SessionUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	Avatar        string `json:"avatar,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// User derives the session view carried by the token alone. Used as the
// fallback when the user id can no longer be resolved against the store.
func (c *SessionClaims) User() SessionUser {
	return SessionUser{
		ID:            c.UserID,
		Email:         c.Email,
		Name:          c.Name,
		Role:          c.Role,
		Avatar:        c.Avatar,
		EmailVerified: c.EmailVerified,
	}
}

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	BirthDate       string `json:"birth_date" validate:"required"`
	Country         string `json:"country" validate:"required"`
}

// RegisterResponse reports the outcome of a registration attempt.
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ForgotPasswordRequest initiates the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// OAuthProfile is the provider-agnostic identity shape merged into sessions.
type OAuthProfile struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	Avatar        string
	EmailVerified bool
}
