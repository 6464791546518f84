package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educasem/educasem-api/internal/middleware"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/pkg/response"
)

// CatalogHandler serves the public course and tutor catalog.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListCourses godoc
// @Summary List courses
// @Description List published course summaries
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, cacheHit, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// GetCourse godoc
// @Summary Get course
// @Description Get a course with its sections and lessons
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, cacheHit, err := h.service.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, course, nil, middleware.ExtractMeta(c))
}

// ListTutors godoc
// @Summary List tutors
// @Description List published tutor profiles
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tutors [get]
func (h *CatalogHandler) ListTutors(c *gin.Context) {
	tutors, cacheHit, err := h.service.ListTutors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, tutors, nil, middleware.ExtractMeta(c))
}

// GetTutor godoc
// @Summary Get tutor
// @Description Get a tutor profile with their courses
// @Tags Catalog
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id} [get]
func (h *CatalogHandler) GetTutor(c *gin.Context) {
	tutor, cacheHit, err := h.service.GetTutor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, tutor, nil, middleware.ExtractMeta(c))
}
