package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/internal/store"
)

const testCookieName = "educasem_session"

func newGuardAuthService(t *testing.T) (*service.AuthService, map[models.Role]string) {
	t.Helper()

	memStore := store.NewMemoryStore()
	svc := service.NewAuthService(memStore, nil, nil, service.AuthConfig{
		TokenSecret: "guard_test_secret",
		TokenExpiry: time.Hour,
		Issuer:      "educasem",
		BaseURL:     "http://localhost:8080",
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdefg1"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := make(map[models.Role]string)
	for _, role := range []models.Role{models.RoleStudent, models.RoleInstructor, models.RoleAdmin} {
		user := &models.User{
			Email:        string(role) + "@educasem.com",
			PasswordHash: string(hash),
			Name:         "Test " + string(role),
			Role:         role,
			Active:       true,
		}
		require.NoError(t, memStore.Create(context.Background(), user))
		token, _, err := svc.IssueSession(user)
		require.NoError(t, err)
		tokens[role] = token
	}

	return svc, tokens
}

func newGuardRouter(t *testing.T) (*gin.Engine, map[models.Role]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authSvc, tokens := newGuardAuthService(t)

	r := gin.New()
	r.Use(Guard(authSvc, GuardConfig{APIPrefix: "/api/v1", CookieName: testCookieName}))
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusOK, "served %s", c.Request.URL.Path)
	})

	return r, tokens
}

func doGuardRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardPublicPaths(t *testing.T) {
	r, _ := newGuardRouter(t)

	for _, path := range []string{
		"/",
		"/courses",
		"/courses/go-desde-cero",
		"/instructors",
		"/instructors/tutor-carlos",
		"/plans",
		"/auth/login",
		"/auth/register",
		"/auth/error",
		"/auth/verify-request",
		"/unauthorized",
	} {
		w := doGuardRequest(r, path, "")
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}

func TestGuardCoursesSubpathsAreNotPublic(t *testing.T) {
	r, _ := newGuardRouter(t)

	w := doGuardRequest(r, "/courses/go-desde-cero/edit", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login?redirect=")
}

func TestGuardAnonymousRedirectedToLogin(t *testing.T) {
	r, _ := newGuardRouter(t)

	w := doGuardRequest(r, "/student/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?redirect=%2Fstudent%2Fdashboard", w.Header().Get("Location"))
}

func TestGuardRoleAreaMatrix(t *testing.T) {
	r, tokens := newGuardRouter(t)

	cases := []struct {
		path     string
		role     models.Role
		wantCode int
		wantLoc  string
	}{
		{"/admin/dashboard", models.RoleAdmin, http.StatusOK, ""},
		{"/admin/dashboard", models.RoleInstructor, http.StatusFound, "/unauthorized"},
		{"/admin/dashboard", models.RoleStudent, http.StatusFound, "/unauthorized"},
		{"/instructor/dashboard", models.RoleAdmin, http.StatusOK, ""},
		{"/instructor/dashboard", models.RoleInstructor, http.StatusOK, ""},
		{"/instructor/dashboard", models.RoleStudent, http.StatusFound, "/unauthorized"},
		{"/student/dashboard", models.RoleAdmin, http.StatusOK, ""},
		{"/student/dashboard", models.RoleInstructor, http.StatusOK, ""},
		{"/student/dashboard", models.RoleStudent, http.StatusOK, ""},
	}

	for _, tc := range cases {
		w := doGuardRequest(r, tc.path, tokens[tc.role])
		assert.Equal(t, tc.wantCode, w.Code, "%s as %s", tc.path, tc.role)
		if tc.wantLoc != "" {
			assert.Equal(t, tc.wantLoc, w.Header().Get("Location"), "%s as %s", tc.path, tc.role)
		}
	}
}

func TestGuardDashboardFanOut(t *testing.T) {
	r, tokens := newGuardRouter(t)

	w := doGuardRequest(r, "/dashboard", tokens[models.RoleAdmin])
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	w = doGuardRequest(r, "/dashboard", tokens[models.RoleStudent])
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/student/dashboard", w.Header().Get("Location"))

	w = doGuardRequest(r, "/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login")
}

func TestGuardBouncesSignedInUsersOffAuthPages(t *testing.T) {
	r, tokens := newGuardRouter(t)

	w := doGuardRequest(r, "/auth/login", tokens[models.RoleInstructor])
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/instructor/dashboard", w.Header().Get("Location"))
}

func TestGuardIgnoresInvalidToken(t *testing.T) {
	r, _ := newGuardRouter(t)

	w := doGuardRequest(r, "/admin/dashboard", "garbage-token")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login")
}

func TestGuardPassesAPIThrough(t *testing.T) {
	r, _ := newGuardRouter(t)

	// API routes enforce auth with their own middleware, not redirects.
	w := doGuardRequest(r, "/api/v1/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardInfrastructurePaths(t *testing.T) {
	r, _ := newGuardRouter(t)

	for _, path := range []string{"/metrics", "/healthz", "/readyz", "/docs/index.html"} {
		w := doGuardRequest(r, path, "")
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}
