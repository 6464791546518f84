package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/store"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
)

type cacheObserver interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// CatalogService serves course and tutor content with read-through caching.
// The boolean returned alongside each payload reports whether the response
// was served from cache.
type CatalogService struct {
	catalog *store.Catalog
	cache   *store.Cache
	metrics cacheObserver
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCatalogService constructs a CatalogService. Metrics may be nil.
func NewCatalogService(catalog *store.Catalog, cache *store.Cache, metrics cacheObserver, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{catalog: catalog, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// ListCourses returns every published course summary.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, bool, error) {
	var courses []models.Course
	if s.cacheGet(ctx, "catalog:courses", &courses) {
		return courses, true, nil
	}

	courses, err := s.catalog.Courses(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	s.cacheSet(ctx, "catalog:courses", courses)
	return courses, false, nil
}

// GetCourse returns a full course with sections.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, bool, error) {
	key := fmt.Sprintf("catalog:course:%s", id)

	var course models.Course
	if s.cacheGet(ctx, key, &course) {
		return &course, true, nil
	}

	loaded, err := s.catalog.CourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	s.cacheSet(ctx, key, loaded)
	return loaded, false, nil
}

// ListTutors returns every tutor profile.
func (s *CatalogService) ListTutors(ctx context.Context) ([]models.Tutor, bool, error) {
	var tutors []models.Tutor
	if s.cacheGet(ctx, "catalog:tutors", &tutors) {
		return tutors, true, nil
	}

	tutors, err := s.catalog.Tutors(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutors")
	}

	s.cacheSet(ctx, "catalog:tutors", tutors)
	return tutors, false, nil
}

// GetTutor returns a tutor profile embedding the tutor's courses.
func (s *CatalogService) GetTutor(ctx context.Context, id string) (*models.TutorDetail, bool, error) {
	key := fmt.Sprintf("catalog:tutor:%s", id)

	var detail models.TutorDetail
	if s.cacheGet(ctx, key, &detail) {
		return &detail, true, nil
	}

	tutor, err := s.catalog.TutorByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}

	courses, err := s.catalog.CoursesByTutor(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor courses")
	}

	loaded := &models.TutorDetail{Tutor: *tutor, Courses: courses}
	s.cacheSet(ctx, key, loaded)
	return loaded, false, nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		return true
	}
	if !errors.Is(err, store.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}
	return false
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
