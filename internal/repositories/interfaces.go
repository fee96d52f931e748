package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status       *models.CourseStatus `json:"status"`
	CreatedBy    *string              `json:"created_by"`
	UniversityID *uint                `json:"university_id"`
	Category     *string              `json:"category"`
	Query        string               `json:"query"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
	SortBy       string               `json:"sort_by"`    // "created_at", "title", "start_date"
	SortOrder    string               `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	CompletionStatus *models.CompletionStatus `json:"completion_status"`
	DateFrom         *time.Time               `json:"date_from"`
	DateTo           *time.Time               `json:"date_to"`
	Limit            int                      `json:"limit"`
	Offset           int                      `json:"offset"`
	SortBy           string                   `json:"sort_by"`
	SortOrder        string                   `json:"sort_order"`
}

type UniversityFilters struct {
	Country *string `json:"country"`
	Query   string  `json:"query"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type AuditFilters struct {
	AdminUserID *string    `json:"admin_user_id"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

// ===== AGGREGATES =====

// PlatformOverview holds platform-wide totals
type PlatformOverview struct {
	TotalCourses         int64   `json:"total_courses"`
	ApprovedCourses      int64   `json:"approved_courses"`
	PendingCourses       int64   `json:"pending_courses"`
	TotalUniversities    int64   `json:"total_universities"`
	TotalEnrollments     int64   `json:"total_enrollments"`
	CompletedEnrollments int64   `json:"completed_enrollments"`
	DistinctStudents     int64   `json:"distinct_students"`
	CompletionRate       float64 `json:"completion_rate"`
	AverageRating        float64 `json:"average_rating"`
}

// CourseStatisticsRow joins course statistics with the course title
type CourseStatisticsRow struct {
	models.CourseStatistics
	Title string `json:"title"`
}

// ===== REPOSITORY INTERFACES =====

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.CourseStatus, reviewerID string, note *string) error
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
}

type TopicRepository interface {
	Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Topic, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Topic, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Topic, int64, error)

	// Course mappings
	MapToCourse(ctx context.Context, tx *gorm.DB, mapping *models.CourseTopic) error
	UnmapFromCourse(ctx context.Context, tx *gorm.DB, courseID, topicID uint) error
	GetMapping(ctx context.Context, tx *gorm.DB, courseID, topicID uint) (*models.CourseTopic, error)
	// GetCourseTopics returns the mappings of a course ordered by sequence_order
	GetCourseTopics(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.CourseTopic, error)
	MaxSequenceOrder(ctx context.Context, tx *gorm.DB, courseID uint) (int, error)
	SetSequenceOrder(ctx context.Context, tx *gorm.DB, mappingID uint, order int) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	Get(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error)
	// GetForUpdate reads the row with an exclusive lock held until tx ends
	GetForUpdate(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	Delete(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) error
	Exists(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (bool, error)
	// RepointCurrentTopic moves every enrollment of the course sitting on
	// fromTopicID to the given topic, or clears it when to is nil
	RepointCurrentTopic(ctx context.Context, tx *gorm.DB, courseID, fromTopicID uint, to *uint) (int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListStudentIDs(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type QuizRepository interface {
	// GetByCourseID returns the quiz with questions ordered by position
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uint) (*models.Quiz, error)
	// ReplaceQuestions creates the quiz if needed and swaps its question set
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, quiz *models.Quiz, questions []models.QuizQuestion) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uint) error
}

type UniversityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, university *models.University) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.University, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.University, error)
	Update(ctx context.Context, tx *gorm.DB, university *models.University) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters UniversityFilters) ([]*models.University, int64, error)
}

type TeachingRepository interface {
	Assign(ctx context.Context, tx *gorm.DB, teaching *models.Teaching) error
	Remove(ctx context.Context, tx *gorm.DB, instructorID string, courseID uint) error
	Exists(ctx context.Context, tx *gorm.DB, instructorID string, courseID uint) (bool, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Teaching, error)
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) ([]*models.Teaching, error)
	ListInstructorIDs(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type ContentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.ContentItem, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type StatisticsRepository interface {
	ComputeCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CourseStatistics, error)
	ComputeStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentStatistics, error)
	ComputeInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (*models.InstructorStatistics, error)

	UpsertCourse(ctx context.Context, tx *gorm.DB, stats *models.CourseStatistics) error
	UpsertStudent(ctx context.Context, tx *gorm.DB, stats *models.StudentStatistics) error
	UpsertInstructor(ctx context.Context, tx *gorm.DB, stats *models.InstructorStatistics) error

	GetCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CourseStatistics, error)
	GetStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentStatistics, error)
	GetInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (*models.InstructorStatistics, error)

	ListCourseStatistics(ctx context.Context, tx *gorm.DB, limit int) ([]CourseStatisticsRow, error)
	ListInstructorStatistics(ctx context.Context, tx *gorm.DB) ([]*models.InstructorStatistics, error)
	Overview(ctx context.Context, tx *gorm.DB) (*PlatformOverview, error)
}

type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AdminAuditLog) error
	List(ctx context.Context, tx *gorm.DB, filters AuditFilters) ([]*models.AdminAuditLog, int64, error)
}
