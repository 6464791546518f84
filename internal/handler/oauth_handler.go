package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/pkg/config"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/response"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthRedirectCookie = "oauth_redirect"
	oauthCookieMaxAge   = 600

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthHandler implements the Google sign-in flow.
type OAuthHandler struct {
	auth    *service.AuthService
	oauth   *oauth2.Config
	session config.SessionConfig
}

// NewOAuthHandler creates an OAuth handler for the Google provider.
func NewOAuthHandler(auth *service.AuthService, googleCfg config.GoogleConfig, session config.SessionConfig) *OAuthHandler {
	return &OAuthHandler{
		auth: auth,
		oauth: &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		session: session,
	}
}

// Enabled reports whether provider credentials are configured.
func (h *OAuthHandler) Enabled() bool {
	return h.oauth.ClientID != "" && h.oauth.ClientSecret != ""
}

// GoogleLogin godoc
// @Summary Start Google sign-in
// @Description Redirect to the Google consent screen
// @Tags Authentication
// @Param redirect query string false "Post sign-in redirect target"
// @Success 302
// @Router /auth/google [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if !h.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "google sign-in is not configured"))
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthCookieMaxAge, "/", "", h.session.CookieSecure, true)
	if redirect := c.Query("redirect"); redirect != "" {
		c.SetCookie(oauthRedirectCookie, redirect, oauthCookieMaxAge, "/", "", h.session.CookieSecure, true)
	}

	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// GoogleCallback godoc
// @Summary Complete Google sign-in
// @Description Exchange the authorization code and establish a session
// @Tags Authentication
// @Success 302
// @Failure 401 {object} response.Envelope
// @Router /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if !h.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "google sign-in is not configured"))
		return
	}

	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "oauth state mismatch"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.session.CookieSecure, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authorization code missing"))
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "code exchange failed"))
		return
	}

	profile, err := h.fetchProfile(c, token)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.auth.CompleteOAuth(c.Request.Context(), *profile)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, res.Token, int(h.session.TokenExpiry.Seconds()), "/", "", h.session.CookieSecure, true)

	redirect := ""
	if stored, err := c.Cookie(oauthRedirectCookie); err == nil {
		redirect = stored
		c.SetCookie(oauthRedirectCookie, "", -1, "/", "", h.session.CookieSecure, true)
	}

	c.Redirect(http.StatusFound, h.auth.ResolveRedirect(redirect, res.User.Role))
}

func (h *OAuthHandler) fetchProfile(c *gin.Context, token *oauth2.Token) (*models.OAuthProfile, error) {
	client := h.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, fmt.Sprintf("user info request returned %d", resp.StatusCode))
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode user info")
	}

	return &models.OAuthProfile{
		Provider:      "google",
		Subject:       payload.ID,
		Email:         payload.Email,
		Name:          payload.Name,
		Avatar:        payload.Picture,
		EmailVerified: payload.VerifiedEmail,
	}, nil
}
