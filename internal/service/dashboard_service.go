package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/store"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
)

// AdminDashboard summarises the platform for administrators.
type AdminDashboard struct {
	TotalUsers   int            `json:"total_users"`
	UsersByRole  map[string]int `json:"users_by_role"`
	TotalCourses int            `json:"total_courses"`
	TotalTutors  int            `json:"total_tutors"`
}

// InstructorDashboard summarises an instructor's teaching activity.
type InstructorDashboard struct {
	Tutor         *models.Tutor   `json:"tutor,omitempty"`
	Courses       []models.Course `json:"courses"`
	TotalStudents int             `json:"total_students"`
}

// StudentDashboard is the student landing payload.
type StudentDashboard struct {
	User               models.SessionUser `json:"user"`
	RecommendedCourses []models.Course    `json:"recommended_courses"`
}

// DashboardService builds the role-specific landing summaries.
type DashboardService struct {
	store   store.UserStore
	catalog *store.Catalog
	logger  *zap.Logger
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(userStore store.UserStore, catalog *store.Catalog, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: userStore, catalog: catalog, logger: logger}
}

// Admin returns the platform-wide summary.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	users, total, err := s.store.List(ctx, models.UserFilter{PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	byRole := make(map[string]int)
	for _, u := range users {
		byRole[string(u.Role)]++
	}

	courses, err := s.catalog.Courses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	tutors, err := s.catalog.Tutors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutors")
	}

	return &AdminDashboard{
		TotalUsers:   total,
		UsersByRole:  byRole,
		TotalCourses: len(courses),
		TotalTutors:  len(tutors),
	}, nil
}

// Instructor returns the teaching summary for the given platform user. An
// instructor without a published tutor profile gets an empty summary.
func (s *DashboardService) Instructor(ctx context.Context, userID string) (*InstructorDashboard, error) {
	tutor, err := s.catalog.TutorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &InstructorDashboard{Courses: []models.Course{}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor profile")
	}

	courses, err := s.catalog.CoursesByTutor(ctx, tutor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor courses")
	}

	students := 0
	for _, c := range courses {
		students += c.Students
	}

	return &InstructorDashboard{Tutor: tutor, Courses: courses, TotalStudents: students}, nil
}

// Student returns the landing payload for an authenticated student.
func (s *DashboardService) Student(ctx context.Context, sessionUser models.SessionUser) (*StudentDashboard, error) {
	courses, err := s.catalog.Courses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	return &StudentDashboard{User: sessionUser, RecommendedCourses: courses}, nil
}
