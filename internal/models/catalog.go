package models

// Lesson is a single video lesson inside a course section.
type Lesson struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Preview  bool   `json:"preview,omitempty"`
}

// CourseSection groups lessons under a titled section.
type CourseSection struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	TotalClasses  int      `json:"total_classes"`
	TotalDuration string   `json:"total_duration"`
	Lessons       []Lesson `json:"lessons"`
}

// Course is a published course in the catalog.
type Course struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TutorID     string          `json:"tutor_id"`
	Category    string          `json:"category"`
	Price       float64         `json:"price"`
	Rating      float64         `json:"rating"`
	Students    int             `json:"students"`
	Sections    []CourseSection `json:"sections,omitempty"`
}

// Tutor is a public instructor profile.
type Tutor struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Headline  string   `json:"headline"`
	Bio       string   `json:"bio"`
	Avatar    string   `json:"avatar,omitempty"`
	Rating    float64  `json:"rating"`
	Students  int      `json:"students"`
	CourseIDs []string `json:"course_ids"`
}

// TutorDetail embeds the tutor's courses for the profile page.
type TutorDetail struct {
	Tutor
	Courses []Course `json:"courses"`
}
