package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/middleware"
	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/internal/store"
	"github.com/educasem/educasem-api/pkg/config"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/response"
)

const testCookieName = "educasem_session"

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:      "handler_test_secret",
		TokenExpiry: time.Hour,
		CookieName:  testCookieName,
		Issuer:      "educasem",
	}
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memStore := store.NewMemoryStore()
	session := testSessionConfig()
	authSvc := service.NewAuthService(memStore, nil, nil, service.AuthConfig{
		TokenSecret: session.Secret,
		TokenExpiry: session.TokenExpiry,
		Issuer:      session.Issuer,
		BaseURL:     "http://localhost:8080",
	})
	registerSvc := service.NewRegisterService(memStore, nil, nil, nil)
	h := NewAuthHandler(authSvc, registerSvc, session)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
		auth.POST("/forgot-password", h.ForgotPassword)

		authed := auth.Group("")
		authed.Use(middleware.Session(authSvc, session.CookieName))
		{
			authed.GET("/session", h.Session)
			authed.POST("/refresh", h.Refresh)
			authed.POST("/change-password", h.ChangePassword)
		}
	}

	return r, memStore, authSvc
}

func seedHandlerUser(t *testing.T, s *store.MemoryStore, email, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:         email,
		PasswordHash:  string(hash),
		Name:          "Handler Test",
		Role:          role,
		EmailVerified: true,
		Active:        true,
	}
	require.NoError(t, s.Create(context.Background(), user))
	return user
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	r, memStore, _ := newAuthTestRouter(t)
	seedHandlerUser(t, memStore, "maria@educasem.com", "Abcdefg1", models.RoleStudent)

	w := postJSON(r, "/api/v1/auth/login?redirect=/courses/go-desde-cero", models.LoginRequest{
		Email:    "maria@educasem.com",
		Password: "Abcdefg1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var envelope struct {
		Data models.LoginResponse   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, "maria@educasem.com", envelope.Data.User.Email)
	assert.Equal(t, "http://localhost:8080/courses/go-desde-cero", envelope.Meta["redirect_to"])
}

func TestLoginEndpointBadPayload(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	r, memStore, _ := newAuthTestRouter(t)
	seedHandlerUser(t, memStore, "maria@educasem.com", "Abcdefg1", models.RoleStudent)

	w := postJSON(r, "/api/v1/auth/login", models.LoginRequest{Email: "maria@educasem.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
	assert.Nil(t, sessionCookie(t, w))
}

func TestLoginEndpointMethodNotAllowed(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "METHOD_NOT_ALLOWED")
}

func TestRegisterEndpoint(t *testing.T) {
	r, memStore, _ := newAuthTestRouter(t)

	payload := models.RegisterRequest{
		FirstName:       "Lucía",
		LastName:        "Fernández",
		Email:           "lucia@educasem.com",
		Phone:           "+34 600 123 456",
		Password:        "Abcdefg1",
		ConfirmPassword: "Abcdefg1",
		BirthDate:       "2000-03-14",
		Country:         "España",
	}

	w := postJSON(r, "/api/v1/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	_, err := memStore.FindByEmail(context.Background(), "lucia@educasem.com")
	assert.NoError(t, err)

	// Same email again conflicts.
	w = postJSON(r, "/api/v1/auth/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_TAKEN")
}

func TestRegisterEndpointFieldErrors(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	payload := models.RegisterRequest{
		FirstName:       "Lucía",
		LastName:        "Fernández",
		Email:           "lucia@educasem.com",
		Phone:           "+34 600 123 456",
		Password:        "Abcdefg1",
		ConfirmPassword: "Mismatch1",
		BirthDate:       "2000-03-14",
		Country:         "España",
	}

	w := postJSON(r, "/api/v1/auth/register", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirm_password")
}

func TestLogoutClearsCookie(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := postJSON(r, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestSessionEndpoint(t *testing.T) {
	r, memStore, authSvc := newAuthTestRouter(t)
	user := seedHandlerUser(t, memStore, "maria@educasem.com", "Abcdefg1", models.RoleStudent)

	token, _, err := authSvc.IssueSession(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "maria@educasem.com")
}

func TestSessionEndpointUnauthorized(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpointRotatesCookie(t *testing.T) {
	r, memStore, authSvc := newAuthTestRouter(t)
	user := seedHandlerUser(t, memStore, "maria@educasem.com", "Abcdefg1", models.RoleStudent)

	token, _, err := authSvc.IssueSession(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
}

func TestChangePasswordEndpoint(t *testing.T) {
	r, memStore, authSvc := newAuthTestRouter(t)
	user := seedHandlerUser(t, memStore, "maria@educasem.com", "Abcdefg1", models.RoleStudent)

	token, _, err := authSvc.IssueSession(user)
	require.NoError(t, err)

	body, _ := json.Marshal(models.ChangePasswordRequest{OldPassword: "Abcdefg1", NewPassword: "Newpass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestForgotPasswordEndpointAccepted(t *testing.T) {
	r, _, _ := newAuthTestRouter(t)

	w := postJSON(r, "/api/v1/auth/forgot-password", models.ForgotPasswordRequest{Email: "nobody@educasem.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}
