package store

import (
	"context"

	"github.com/educasem/educasem-api/internal/models"
)

// Catalog serves the published course and tutor data. The content is static
// for now; the read API mirrors what a database-backed catalog would expose.
type Catalog struct {
	courses []models.Course
	tutors  []models.Tutor
}

// NewCatalog returns the catalog seeded with the published content.
func NewCatalog() *Catalog {
	return &Catalog{courses: seedCourses(), tutors: seedTutors()}
}

// Courses returns every published course without section detail.
func (c *Catalog) Courses(_ context.Context) ([]models.Course, error) {
	out := make([]models.Course, len(c.courses))
	for i, course := range c.courses {
		summary := course
		summary.Sections = nil
		out[i] = summary
	}
	return out, nil
}

// CourseByID returns a full course including its sections.
func (c *Catalog) CourseByID(_ context.Context, id string) (*models.Course, error) {
	for _, course := range c.courses {
		if course.ID == id {
			copied := course
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// CoursesByTutor returns the courses taught by the given tutor.
func (c *Catalog) CoursesByTutor(_ context.Context, tutorID string) ([]models.Course, error) {
	var out []models.Course
	for _, course := range c.courses {
		if course.TutorID == tutorID {
			summary := course
			summary.Sections = nil
			out = append(out, summary)
		}
	}
	return out, nil
}

// TutorByUserID returns the tutor profile owned by the given platform user.
func (c *Catalog) TutorByUserID(_ context.Context, userID string) (*models.Tutor, error) {
	for _, tutor := range c.tutors {
		if tutor.UserID == userID {
			copied := tutor
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Tutors returns every tutor profile.
func (c *Catalog) Tutors(_ context.Context) ([]models.Tutor, error) {
	out := make([]models.Tutor, len(c.tutors))
	copy(out, c.tutors)
	return out, nil
}

// TutorByID returns a tutor profile.
func (c *Catalog) TutorByID(_ context.Context, id string) (*models.Tutor, error) {
	for _, tutor := range c.tutors {
		if tutor.ID == id {
			copied := tutor
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func seedCourses() []models.Course {
	return []models.Course{
		{
			ID:          "go-desde-cero",
			Title:       "Programación desde cero",
			Description: "Curso introductorio de programación con proyectos guiados.",
			TutorID:     "tutor-carlos",
			Category:    "programming",
			Price:       29.99,
			Rating:      4.7,
			Students:    1240,
			Sections: []models.CourseSection{
				{
					ID:            1,
					Title:         "Sección 1",
					TotalClasses:  4,
					TotalDuration: "45 min",
					Lessons: []models.Lesson{
						{ID: 1, Title: "Introducción al curso", Duration: "10:30", Preview: true},
						{ID: 2, Title: "Preparando el entorno", Duration: "12:15"},
						{ID: 3, Title: "Primer programa", Duration: "11:40"},
						{ID: 4, Title: "Ejercicio guiado", Duration: "10:35"},
					},
				},
				{
					ID:            2,
					Title:         "Sección 2",
					TotalClasses:  3,
					TotalDuration: "38 min",
					Lessons: []models.Lesson{
						{ID: 5, Title: "Variables y tipos", Duration: "13:05"},
						{ID: 6, Title: "Condicionales", Duration: "12:20"},
						{ID: 7, Title: "Bucles", Duration: "12:35"},
					},
				},
			},
		},
		{
			ID:          "matematicas-basicas",
			Title:       "Matemáticas básicas",
			Description: "Fundamentos de aritmética y álgebra para secundaria.",
			TutorID:     "tutor-ana",
			Category:    "math",
			Price:       19.99,
			Rating:      4.5,
			Students:    860,
			Sections: []models.CourseSection{
				{
					ID:            1,
					Title:         "Aritmética",
					TotalClasses:  3,
					TotalDuration: "40 min",
					Lessons: []models.Lesson{
						{ID: 1, Title: "Números y operaciones", Duration: "14:00", Preview: true},
						{ID: 2, Title: "Fracciones", Duration: "13:30"},
						{ID: 3, Title: "Porcentajes", Duration: "12:30"},
					},
				},
			},
		},
		{
			ID:          "ingles-conversacional",
			Title:       "Inglés conversacional",
			Description: "Práctica de conversación para nivel intermedio.",
			TutorID:     "tutor-carlos",
			Category:    "languages",
			Price:       24.99,
			Rating:      4.8,
			Students:    2110,
			Sections: []models.CourseSection{
				{
					ID:            1,
					Title:         "Presentaciones",
					TotalClasses:  2,
					TotalDuration: "25 min",
					Lessons: []models.Lesson{
						{ID: 1, Title: "Saludos y presentaciones", Duration: "12:10", Preview: true},
						{ID: 2, Title: "Conversación guiada", Duration: "12:50"},
					},
				},
			},
		},
	}
}

func seedTutors() []models.Tutor {
	return []models.Tutor{
		{
			ID:       "tutor-carlos",
			UserID:   "2",
			Name:     "Carlos Mendez",
			Headline: "Ingeniero de software y docente",
			Bio:      "Más de diez años enseñando programación e inglés técnico a estudiantes de todos los niveles.",
			Avatar:   "/images/avatars/instructor.jpg",
			Rating:   4.8,
			Students: 3350,
			CourseIDs: []string{
				"go-desde-cero",
				"ingles-conversacional",
			},
		},
		{
			ID:       "tutor-ana",
			UserID:   "4",
			Name:     "Ana Rodriguez",
			Headline: "Licenciada en matemáticas",
			Bio:      "Especialista en didáctica de las matemáticas para secundaria y preparación universitaria.",
			Avatar:   "/images/avatars/instructor2.jpg",
			Rating:   4.5,
			Students: 860,
			CourseIDs: []string{
				"matematicas-basicas",
			},
		},
	}
}
