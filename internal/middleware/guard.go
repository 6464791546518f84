package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
)

// publicExact lists the pages reachable without a session.
var publicExact = map[string]struct{}{
	"/":                    {},
	"/courses":             {},
	"/instructors":         {},
	"/plans":               {},
	"/about":               {},
	"/contact":             {},
	"/unauthorized":        {},
	"/auth/login":          {},
	"/auth/register":       {},
	"/auth/forgot":         {},
	"/auth/reset":          {},
	"/auth/error":          {},
	"/auth/verify-request": {},
}

// publicPatterns matches parameterised public pages.
var publicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/courses/[^/]+$`),
	regexp.MustCompile(`^/instructors/[^/]+$`),
}

// authPages are the entry pages an already signed-in user is bounced away
// from, to their role landing page.
var authPages = map[string]struct{}{
	"/auth/login":    {},
	"/auth/register": {},
}

// roleAreas maps a path prefix to the minimum role it requires.
var roleAreas = []struct {
	prefix  string
	minRole models.Role
}{
	{"/admin", models.RoleAdmin},
	{"/instructor", models.RoleInstructor},
	{"/student", models.RoleStudent},
}

// GuardConfig tunes the route guard.
type GuardConfig struct {
	// APIPrefix marks the path subtree that gets JSON errors instead of
	// browser redirects.
	APIPrefix string
	// CookieName is the session cookie consulted alongside the
	// Authorization header.
	CookieName string
}

// Guard is the engine-wide route authorization gate. It classifies every
// request path and either lets it pass, answers with a JSON error (API
// paths), or redirects (page paths). Handler-level role middleware still
// applies after it.
func Guard(authService *service.AuthService, cfg GuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		var claims *models.SessionClaims
		if token := ExtractToken(c, cfg.CookieName); token != "" {
			if parsed, err := authService.VerifySession(token); err == nil {
				claims = parsed
				c.Set(ContextUserKey, claims)
			}
		}

		// The API subtree manages its own auth via route middleware and
		// answers in JSON, never with redirects.
		if cfg.APIPrefix != "" && strings.HasPrefix(path, cfg.APIPrefix) {
			c.Next()
			return
		}

		// Infrastructure endpoints stay open.
		if path == "/metrics" || path == "/healthz" || path == "/readyz" || strings.HasPrefix(path, "/docs") || strings.HasPrefix(path, "/static") {
			c.Next()
			return
		}

		// Signed-in users do not see the sign-in pages again.
		if _, isAuthPage := authPages[path]; isAuthPage && claims != nil {
			c.Redirect(http.StatusFound, claims.Role.DashboardPath())
			c.Abort()
			return
		}

		if isPublicPath(path) {
			c.Next()
			return
		}

		// The bare dashboard path fans out to the role-specific one.
		if path == "/dashboard" {
			if claims == nil {
				redirectToLogin(c, path)
				return
			}
			c.Redirect(http.StatusFound, claims.Role.DashboardPath())
			c.Abort()
			return
		}

		for _, area := range roleAreas {
			if path != area.prefix && !strings.HasPrefix(path, area.prefix+"/") {
				continue
			}
			if claims == nil {
				redirectToLogin(c, path)
				return
			}
			if !claims.Role.AtLeast(area.minRole) {
				c.Redirect(http.StatusFound, "/unauthorized")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		// Everything else requires any authenticated session.
		if claims == nil {
			redirectToLogin(c, path)
			return
		}

		c.Next()
	}
}

func isPublicPath(path string) bool {
	if _, ok := publicExact[path]; ok {
		return true
	}
	for _, pattern := range publicPatterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

func redirectToLogin(c *gin.Context, from string) {
	target := "/auth/login?redirect=" + url.QueryEscape(from)
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
