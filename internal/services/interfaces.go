package services

import (
	"context"
	"io"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/course-service/internal/catalog"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// ===== ENROLLMENT DTOs =====

type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,max=255"`
	CourseID  uint   `json:"course_id" validate:"required"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

type UpdateCompletionRequest struct {
	CompletionStatus models.CompletionStatus `json:"completion_status" validate:"required"`
}

type RateCourseRequest struct {
	Rating         int     `json:"rating" validate:"required,rating_range"`
	ReviewText     *string `json:"review_text" validate:"omitempty,max=2000"`
	IsReviewPublic bool    `json:"is_review_public"`
}

// ===== PROGRESS AND ASSESSMENT DTOs =====

type ProgressResponse struct {
	StudentID      string        `json:"student_id"`
	CourseID       uint          `json:"course_id"`
	CurrentTopicID *uint         `json:"current_topic_id"`
	CurrentTopic   *models.Topic `json:"current_topic,omitempty"`
	Message        string        `json:"message"`
}

// SubmitAssessmentRequest carries exactly one of Score or Answers
type SubmitAssessmentRequest struct {
	Score   *int      `json:"score"`
	Answers []*string `json:"answers"`
}

// AnswerSource names where the expected answers came from
type AnswerSource string

const (
	SourceScore     AnswerSource = "score"
	SourceQuiz      AnswerSource = "quiz"
	SourceAnswerKey AnswerSource = "answer_key"
)

type AssessmentResult struct {
	StudentID        string                  `json:"student_id"`
	CourseID         uint                    `json:"course_id"`
	Score            int                     `json:"score"`
	Grade            string                  `json:"grade"`
	Passed           bool                    `json:"passed"`
	CompletionStatus models.CompletionStatus `json:"completion_status"`
	CompletionDate   *datatypes.Date         `json:"completion_date"`
	Source           AnswerSource            `json:"source"`
	Message          string                  `json:"message"`
}

// ===== MODERATION DTOs =====

type OverrideRatingRequest struct {
	Rating int     `json:"rating" validate:"required,rating_range"`
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type ModerationReasonRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// ===== COURSE DTOs =====

type CreateCourseRequest struct {
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	Category      string     `json:"category" validate:"omitempty,max=100"`
	Level         string     `json:"level" validate:"omitempty,course_level"`
	Language      string     `json:"language" validate:"omitempty,max=50"`
	StartDate     *time.Time `json:"start_date"`
	Duration      int        `json:"duration" validate:"omitempty,min=1,max=104"`
	UniversityID  *uint      `json:"university_id"`
	QuizAnswerKey *string    `json:"quiz_answer_key" validate:"omitempty,answer_key"`
}

type UpdateCourseRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	Category     *string    `json:"category" validate:"omitempty,max=100"`
	Level        *string    `json:"level" validate:"omitempty,course_level"`
	Language     *string    `json:"language" validate:"omitempty,max=50"`
	StartDate    *time.Time `json:"start_date"`
	Duration     *int       `json:"duration" validate:"omitempty,min=1,max=104"`
	UniversityID *uint      `json:"university_id"`
}

type CourseResponse struct {
	*models.Course
	CanEdit bool `json:"can_edit"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type ReviewCourseRequest struct {
	Note *string `json:"note" validate:"omitempty,max=1000"`
}

type SetAnswerKeyRequest struct {
	AnswerKey string `json:"answer_key" validate:"required,answer_key"`
}

type CreateTopicRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type TopicListResponse struct {
	Topics []*models.Topic `json:"topics"`
	Total  int64           `json:"total"`
}

// MapTopicRequest appends the topic before the final assessment when SequenceOrder is nil
type MapTopicRequest struct {
	TopicID       uint `json:"topic_id" validate:"required"`
	SequenceOrder *int `json:"sequence_order" validate:"omitempty,sequence_order"`
}

// ===== UNIVERSITY DTOs =====

type CreateUniversityRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Region  string  `json:"region" validate:"omitempty,max=100"`
	Country string  `json:"country" validate:"omitempty,max=100"`
	Website *string `json:"website" validate:"omitempty,url"`
}

type UpdateUniversityRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Region  *string `json:"region" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
	Website *string `json:"website" validate:"omitempty,url"`
}

type UniversityListResponse struct {
	Universities []*models.University `json:"universities"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Size         int                  `json:"size"`
}

// ===== QUIZ DTOs =====

type QuizQuestionInput struct {
	Prompt        string   `json:"prompt" validate:"required,max=2000"`
	Options       []string `json:"options" validate:"omitempty,max=10,dive,max=500"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,answer_letter"`
}

type ReplaceQuizRequest struct {
	Title     string              `json:"title" validate:"omitempty,max=200"`
	Questions []QuizQuestionInput `json:"questions" validate:"required,min=1,max=100,dive"`
}

// ===== TEACHING AND CONTENT DTOs =====

type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required,max=255"`
}

type CreateContentRequest struct {
	TopicID     *uint              `json:"topic_id"`
	Title       string             `json:"title" validate:"required,min=1,max=200"`
	ContentType models.ContentType `json:"content_type" validate:"required,content_type"`
	URL         string             `json:"url" validate:"required,url,max=500"`
	Description *string            `json:"description" validate:"omitempty,max=2000"`
}

// ===== STATISTICS AND ANALYTICS DTOs =====

// RecomputeRequest names the statistics rows touched by a write; zero fields are skipped
type RecomputeRequest struct {
	CourseID      uint
	StudentID     string
	InstructorIDs []string
}

type RecomputeSummary struct {
	Courses     int           `json:"courses"`
	Students    int           `json:"students"`
	Instructors int           `json:"instructors"`
	Failures    int           `json:"failures"`
	Duration    time.Duration `json:"duration"`
}

type AnalyticsOverview struct {
	Platform    *repositories.PlatformOverview     `json:"platform"`
	TopCourses  []repositories.CourseStatisticsRow `json:"top_courses"`
	Instructors []*models.InstructorStatistics     `json:"instructors"`
	GeneratedAt time.Time                          `json:"generated_at"`
}

type AuditListResponse struct {
	Entries []*models.AdminAuditLog `json:"entries"`
	Total   int64                   `json:"total"`
}

type SeedSummary struct {
	Universities int `json:"universities"`
	Courses      int `json:"courses"`
	Topics       int `json:"topics"`
	Quizzes      int `json:"quizzes"`
}

// ===== SERVICE INTERFACES =====

// ProgressService moves an enrollment's current topic pointer
type ProgressService interface {
	Advance(ctx context.Context, actor *models.User, studentID string, courseID, topicID uint) (*ProgressResponse, error)
	Rollback(ctx context.Context, actor *models.User, studentID string, courseID, topicID uint) (*ProgressResponse, error)
	Reset(ctx context.Context, actor *models.User, studentID string, courseID uint) (*ProgressResponse, error)
}

// AssessmentService grades a course assessment and applies completion
type AssessmentService interface {
	Submit(ctx context.Context, actor *models.User, studentID string, courseID uint, req *SubmitAssessmentRequest) (*AssessmentResult, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, actor *models.User, req *EnrollRequest) (*models.Enrollment, error)
	Get(ctx context.Context, actor *models.User, studentID string, courseID uint) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, actor *models.User, studentID string, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	ListByCourse(ctx context.Context, actor *models.User, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	UpdateCompletion(ctx context.Context, actor *models.User, studentID string, courseID uint, req *UpdateCompletionRequest) (*models.Enrollment, error)
	Rate(ctx context.Context, actor *models.User, studentID string, courseID uint, req *RateCourseRequest) (*models.Enrollment, error)
}

// ModerationService is restricted to senior administrators
type ModerationService interface {
	DeleteReview(ctx context.Context, actor *models.User, studentID string, courseID uint, req *ModerationReasonRequest) (*models.Enrollment, error)
	OverrideRating(ctx context.Context, actor *models.User, studentID string, courseID uint, req *OverrideRatingRequest) (*models.Enrollment, error)
	ForceCompletion(ctx context.Context, actor *models.User, studentID string, courseID uint, req *ModerationReasonRequest) (*models.Enrollment, error)
}

type CourseService interface {
	Create(ctx context.Context, actor *models.User, req *CreateCourseRequest) (*CourseResponse, error)
	GetByID(ctx context.Context, actor *models.User, id uint) (*CourseResponse, error)
	List(ctx context.Context, actor *models.User, filters repositories.CourseFilters) (*CourseListResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req *UpdateCourseRequest) (*CourseResponse, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	SetAnswerKey(ctx context.Context, actor *models.User, id uint, req *SetAnswerKeyRequest) (*CourseResponse, error)

	// Approval workflow
	Approve(ctx context.Context, actor *models.User, id uint, req *ReviewCourseRequest) (*CourseResponse, error)
	Reject(ctx context.Context, actor *models.User, id uint, req *ReviewCourseRequest) (*CourseResponse, error)

	// Topics
	CreateTopic(ctx context.Context, actor *models.User, req *CreateTopicRequest) (*models.Topic, error)
	ListTopics(ctx context.Context, limit, offset int) (*TopicListResponse, error)
	MapTopic(ctx context.Context, actor *models.User, courseID uint, req *MapTopicRequest) (*models.CourseTopic, error)
	UnmapTopic(ctx context.Context, actor *models.User, courseID, topicID uint) error
	GetCourseTopics(ctx context.Context, courseID uint) ([]models.CourseTopic, error)
}

type UniversityService interface {
	Create(ctx context.Context, actor *models.User, req *CreateUniversityRequest) (*models.University, error)
	GetByID(ctx context.Context, id uint) (*models.University, error)
	List(ctx context.Context, filters repositories.UniversityFilters) (*UniversityListResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req *UpdateUniversityRequest) (*models.University, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
}

type QuizService interface {
	Get(ctx context.Context, actor *models.User, courseID uint) (*models.Quiz, error)
	Replace(ctx context.Context, actor *models.User, courseID uint, req *ReplaceQuizRequest) (*models.Quiz, error)
	// ImportSheet reads position, prompt, options and correct answer columns from an xlsx workbook
	ImportSheet(ctx context.Context, actor *models.User, courseID uint, title string, r io.Reader) (*models.Quiz, error)
}

type TeachingService interface {
	Assign(ctx context.Context, actor *models.User, courseID uint, req *AssignInstructorRequest) (*models.Teaching, error)
	Remove(ctx context.Context, actor *models.User, courseID uint, instructorID string) error
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Teaching, error)
}

type ContentService interface {
	Create(ctx context.Context, actor *models.User, courseID uint, req *CreateContentRequest) (*models.ContentItem, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.ContentItem, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
}

// StatisticsTrigger schedules a best-effort recompute; it never blocks or fails the caller
type StatisticsTrigger interface {
	TriggerRecompute(req RecomputeRequest)
}

type StatisticsService interface {
	StatisticsTrigger
	Recompute(ctx context.Context, req RecomputeRequest) error
	RecomputeAll(ctx context.Context) (*RecomputeSummary, error)
	GetCourse(ctx context.Context, courseID uint) (*models.CourseStatistics, error)
	GetStudent(ctx context.Context, actor *models.User, studentID string) (*models.StudentStatistics, error)
	GetInstructor(ctx context.Context, actor *models.User, instructorID string) (*models.InstructorStatistics, error)
	// Wait blocks until triggered recomputes have finished
	Wait()
}

type AnalyticsService interface {
	Overview(ctx context.Context, topN int) (*AnalyticsOverview, error)
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

type AuditService interface {
	Record(ctx context.Context, entry *models.AdminAuditLog) error
	List(ctx context.Context, filters repositories.AuditFilters) (*AuditListResponse, error)
}

// CatalogService upserts catalog documents loaded at startup
type CatalogService interface {
	Seed(ctx context.Context, docs []*catalog.CourseDocument) (*SeedSummary, error)
}

type ServiceManager interface {
	Progress() ProgressService
	Assessment() AssessmentService
	Enrollment() EnrollmentService
	Moderation() ModerationService
	Course() CourseService
	University() UniversityService
	Quiz() QuizService
	Teaching() TeachingService
	Content() ContentService
	Statistics() StatisticsService
	Analytics() AnalyticsService
	Audit() AuditService
	Catalog() CatalogService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
