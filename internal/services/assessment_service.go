package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type assessmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	stats     StatisticsTrigger
	publisher events.EventPublisher
}

func NewAssessmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, stats StatisticsTrigger, publisher events.EventPublisher) AssessmentService {
	return &assessmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		stats:     stats,
		publisher: publisher,
	}
}

// Submit grades the assessment and persists the outcome. A passing grade
// completes the enrollment today; a failing one leaves it in progress.
func (s *assessmentService) Submit(ctx context.Context, actor *models.User, studentID string, courseID uint, req *SubmitAssessmentRequest) (*AssessmentResult, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "submit assessment"); err != nil {
		return nil, err
	}
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	s.logger.Info("Submitting assessment", "student_id", studentID, "course_id", courseID, "actor_id", actor.ID)

	result := &AssessmentResult{StudentID: studentID, CourseID: courseID}
	var enrollment *models.Enrollment
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := ensureStudent(ctx, s.repo, studentID); err != nil {
			return err
		}
		course, err := loadCourse(ctx, s.repo, tx, courseID)
		if err != nil {
			return err
		}

		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		score, source, err := s.score(ctx, tx, course, req)
		if err != nil {
			return err
		}
		result.Score = score
		result.Source = source
		result.Grade = LetterGrade(score)
		result.Passed = IsPassingGrade(result.Grade)

		applyGrade(enrollment, result.Grade)
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to save assessment result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.CompletionStatus = enrollment.CompletionStatus
	result.CompletionDate = enrollment.CompletionDate
	result.Message = resultMessage(result)

	s.logger.Info("Assessment graded",
		"student_id", studentID,
		"course_id", courseID,
		"score", result.Score,
		"grade", result.Grade,
		"source", result.Source)

	payload := enrollmentEvent(enrollment, actor.ID)
	payload.Score = &result.Score
	publishEvent(ctx, s.publisher, s.logger, events.EnrollmentAssessed, payload)
	if result.Passed {
		publishEvent(ctx, s.publisher, s.logger, events.EnrollmentCompleted, payload)
	}
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID, StudentID: studentID})

	return result, nil
}

func (s *assessmentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// score takes the supplied score as is, or grades the answers against the
// quiz when it has questions and against the course answer key otherwise
func (s *assessmentService) score(ctx context.Context, tx *gorm.DB, course *models.Course, req *SubmitAssessmentRequest) (int, AnswerSource, error) {
	if req.Score != nil {
		return *req.Score, SourceScore, nil
	}

	quiz, err := s.repo.Quiz().GetByCourseID(ctx, tx, course.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return 0, "", fmt.Errorf("failed to get quiz: %w", err)
	}

	source := SourceAnswerKey
	if quiz != nil && len(quiz.Questions) > 0 {
		source = SourceQuiz
	}

	score, err := ScoreAnswers(ExpectedAnswers(quiz, course.QuizAnswerKey), req.Answers)
	if err != nil {
		return 0, "", err
	}
	return score, source, nil
}

func validateSubmission(req *SubmitAssessmentRequest) error {
	if req == nil {
		return ErrAnswerSourceAmbiguous
	}
	hasScore := req.Score != nil
	hasAnswers := req.Answers != nil
	if hasScore == hasAnswers {
		return ErrAnswerSourceAmbiguous
	}
	if hasScore && (*req.Score < 0 || *req.Score > 100) {
		return ErrInvalidScore
	}
	return nil
}

func applyGrade(enrollment *models.Enrollment, grade string) {
	enrollment.Grade = &grade
	if IsPassingGrade(grade) {
		today := models.Today()
		enrollment.CompletionStatus = models.CompletionCompleted
		enrollment.CompletionDate = &today
		return
	}
	enrollment.CompletionStatus = models.CompletionInProgress
	enrollment.CompletionDate = nil
}

func resultMessage(r *AssessmentResult) string {
	if r.Passed {
		return fmt.Sprintf("Assessment passed with %d%% (grade %s). Course completed.", r.Score, r.Grade)
	}
	return fmt.Sprintf("Assessment scored %d%% (grade %s). A grade of %s or better is needed to complete the course.", r.Score, r.Grade, gradeThresholds[len(gradeThresholds)-1].letter)
}
