package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educasem/educasem-api/internal/service"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/response"
)

// DashboardHandler serves the role-specific landing summaries.
type DashboardHandler struct {
	service *service.DashboardService
	auth    *service.AuthService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *service.DashboardService, auth *service.AuthService) *DashboardHandler {
	return &DashboardHandler{service: svc, auth: auth}
}

// Admin godoc
// @Summary Admin dashboard
// @Description Platform-wide summary for administrators
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// Instructor godoc
// @Summary Instructor dashboard
// @Description Teaching summary for the authenticated instructor
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/instructor [get]
func (h *DashboardHandler) Instructor(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Instructor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// Student godoc
// @Summary Student dashboard
// @Description Landing payload for the authenticated student
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sessionUser := h.auth.CurrentSession(c.Request.Context(), claims)
	summary, err := h.service.Student(c.Request.Context(), sessionUser)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}
