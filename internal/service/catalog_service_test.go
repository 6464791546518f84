package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educasem/educasem-api/internal/store"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
)

type fakeCacheObserver struct {
	hits   int
	misses int
}

func (o *fakeCacheObserver) RecordCacheHit()  { o.hits++ }
func (o *fakeCacheObserver) RecordCacheMiss() { o.misses++ }

func newCatalogService(observer cacheObserver) *CatalogService {
	// A cache without a Redis client always misses, which keeps tests
	// independent of a running Redis.
	cache := store.NewCache(nil, nil)
	return NewCatalogService(store.NewCatalog(), cache, observer, time.Minute, nil)
}

func TestListCourses(t *testing.T) {
	observer := &fakeCacheObserver{}
	svc := newCatalogService(observer)

	courses, cacheHit, err := svc.ListCourses(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Len(t, courses, 3)
	assert.Equal(t, 1, observer.misses)
	assert.Zero(t, observer.hits)

	for _, course := range courses {
		assert.Nil(t, course.Sections, "list view must not include sections")
	}
}

func TestGetCourseIncludesSections(t *testing.T) {
	svc := newCatalogService(nil)

	course, cacheHit, err := svc.GetCourse(context.Background(), "go-desde-cero")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, "Programación desde cero", course.Title)
	require.NotEmpty(t, course.Sections)
	assert.NotEmpty(t, course.Sections[0].Lessons)
}

func TestGetCourseNotFound(t *testing.T) {
	svc := newCatalogService(nil)

	_, _, err := svc.GetCourse(context.Background(), "missing-course")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestListTutors(t *testing.T) {
	svc := newCatalogService(nil)

	tutors, _, err := svc.ListTutors(context.Background())
	require.NoError(t, err)
	assert.Len(t, tutors, 2)
}

func TestGetTutorEmbedsCourses(t *testing.T) {
	svc := newCatalogService(nil)

	detail, _, err := svc.GetTutor(context.Background(), "tutor-carlos")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Mendez", detail.Name)
	require.Len(t, detail.Courses, 2)
	for _, course := range detail.Courses {
		assert.Equal(t, "tutor-carlos", course.TutorID)
	}
}

func TestGetTutorNotFound(t *testing.T) {
	svc := newCatalogService(nil)

	_, _, err := svc.GetTutor(context.Background(), "tutor-missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCatalogServiceNilCachePointer(t *testing.T) {
	svc := NewCatalogService(store.NewCatalog(), nil, nil, time.Minute, nil)

	courses, cacheHit, err := svc.ListCourses(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Len(t, courses, 3)
}
