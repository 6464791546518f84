package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educasem/educasem-api/internal/middleware"
	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/internal/store"
)

func newUserTestRouter(t *testing.T) (*gin.Engine, map[models.Role]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memStore := store.NewSeededMemoryStore()
	authSvc := service.NewAuthService(memStore, nil, nil, service.AuthConfig{
		TokenSecret: "user_handler_secret",
		TokenExpiry: time.Hour,
		Issuer:      "educasem",
		BaseURL:     "http://localhost:8080",
	})
	h := NewUserHandler(service.NewUserService(memStore, nil))

	tokens := make(map[models.Role]string)
	for id, role := range map[string]models.Role{"1": models.RoleAdmin, "3": models.RoleStudent} {
		user, err := memStore.FindByID(context.Background(), id)
		require.NoError(t, err)
		token, _, err := authSvc.IssueSession(user)
		require.NoError(t, err)
		tokens[role] = token
	}

	r := gin.New()
	users := r.Group("/api/v1/users")
	users.Use(middleware.Session(authSvc, testCookieName))
	{
		users.GET("", middleware.RequireRole(models.RoleAdmin), h.List)
		users.GET("/export", middleware.RequireRole(models.RoleAdmin), h.Export)
		users.GET("/:id", middleware.RequireSelfOrRole(models.RoleAdmin), h.Get)
		users.PATCH("/:id/active", middleware.RequireRole(models.RoleAdmin), h.SetActive)
	}
	return r, tokens
}

func authedRequest(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListUsersEndpoint(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	w := authedRequest(r, http.MethodGet, "/api/v1/users?page=1&page_size=2", tokens[models.RoleAdmin], nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []models.PublicUser `json:"data"`
		Pagination *models.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 5, envelope.Pagination.TotalCount)

	// No password material leaks through the public projection.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestListUsersForbiddenForStudents(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	w := authedRequest(r, http.MethodGet, "/api/v1/users", tokens[models.RoleStudent], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListUsersRejectsUnknownRoleFilter(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	w := authedRequest(r, http.MethodGet, "/api/v1/users?role=superuser", tokens[models.RoleAdmin], nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserSelfAccess(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	// Student "3" can read their own record.
	w := authedRequest(r, http.MethodGet, "/api/v1/users/3", tokens[models.RoleStudent], nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// But not someone else's.
	w = authedRequest(r, http.MethodGet, "/api/v1/users/1", tokens[models.RoleStudent], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetActiveEndpoint(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	body, _ := json.Marshal(map[string]bool{"active": false})
	w := authedRequest(r, http.MethodPatch, "/api/v1/users/3/active", tokens[models.RoleAdmin], body)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = authedRequest(r, http.MethodPatch, "/api/v1/users/missing/active", tokens[models.RoleAdmin], body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportEndpoint(t *testing.T) {
	r, tokens := newUserTestRouter(t)

	w := authedRequest(r, http.MethodGet, "/api/v1/users/export?format=csv", tokens[models.RoleAdmin], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "users.csv")

	w = authedRequest(r, http.MethodGet, "/api/v1/users/export?format=xlsx", tokens[models.RoleAdmin], nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
