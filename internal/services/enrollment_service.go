package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	stats     StatisticsTrigger
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, stats StatisticsTrigger, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		stats:     stats,
		publisher: publisher,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, actor *models.User, req *EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := authorizeSelfOrAdmin(actor, req.StudentID, req.CourseID, "enroll"); err != nil {
		return nil, err
	}

	isStudent, err := s.repo.User().HasRole(ctx, req.StudentID, models.RoleStudent)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to check student role: %w", err)
	}
	if !isStudent {
		return nil, NewValidationError("student_id", "user is not a student", req.StudentID)
	}

	var enrollment *models.Enrollment
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		course, err := loadCourse(ctx, s.repo, tx, req.CourseID)
		if err != nil {
			return err
		}
		if !course.IsApproved() {
			return ErrCourseNotApproved
		}

		exists, err := s.repo.Enrollment().Exists(ctx, tx, req.StudentID, req.CourseID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists {
			return ErrEnrollmentExists
		}

		enrollment = &models.Enrollment{
			StudentID:        req.StudentID,
			CourseID:         req.CourseID,
			EnrollmentDate:   models.Today(),
			Status:           models.EnrollmentActive,
			CompletionStatus: models.CompletionInProgress,
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrEnrollmentExists
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled", "student_id", req.StudentID, "course_id", req.CourseID, "actor_id", actor.ID)
	publishEvent(ctx, s.publisher, s.logger, events.EnrollmentCreated, enrollmentEvent(enrollment, actor.ID))
	triggerStats(s.stats, RecomputeRequest{CourseID: req.CourseID, StudentID: req.StudentID})

	return enrollment, nil
}

func (s *enrollmentService) Get(ctx context.Context, actor *models.User, studentID string, courseID uint) (*models.Enrollment, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "read"); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment().Get(ctx, s.db, studentID, courseID)
	if err != nil {
		return nil, notFoundAs(err, ErrEnrollmentNotFound, "get enrollment")
	}
	return enrollment, nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, actor *models.User, studentID string, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, 0, "list"); err != nil {
		return nil, err
	}

	enrollments, total, err := s.repo.Enrollment().ListByStudent(ctx, s.db, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	page, size := pageOf(filters.Limit, filters.Offset)
	return &EnrollmentListResponse{Enrollments: enrollments, Total: total, Page: page, Size: size}, nil
}

// ListByCourse is open to course staff and analysts
func (s *enrollmentService) ListByCourse(ctx context.Context, actor *models.User, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.repo, s.db, courseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAnalyst {
		staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
		if err != nil {
			return nil, err
		}
		if !staff {
			return nil, NewPermissionError(actor.ID, courseID, "course", "list enrollments", "not course staff")
		}
	}

	enrollments, total, err := s.repo.Enrollment().ListByCourse(ctx, s.db, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	page, size := pageOf(filters.Limit, filters.Offset)
	return &EnrollmentListResponse{Enrollments: enrollments, Total: total, Page: page, Size: size}, nil
}

// UpdateCompletion sets the completion status explicitly. Completed stamps
// today's date; In Progress clears it.
func (s *enrollmentService) UpdateCompletion(ctx context.Context, actor *models.User, studentID string, courseID uint, req *UpdateCompletionRequest) (*models.Enrollment, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "update completion"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.CompletionStatus != models.CompletionCompleted && req.CompletionStatus != models.CompletionInProgress {
		return nil, ErrInvalidCompletionStatus
	}

	var enrollment *models.Enrollment
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		setCompletion(enrollment, req.CompletionStatus)
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to update completion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Completion updated", "student_id", studentID, "course_id", courseID, "status", req.CompletionStatus)
	if enrollment.IsCompleted() {
		publishEvent(ctx, s.publisher, s.logger, events.EnrollmentCompleted, enrollmentEvent(enrollment, actor.ID))
	}
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID, StudentID: studentID})

	return enrollment, nil
}

func (s *enrollmentService) Rate(ctx context.Context, actor *models.User, studentID string, courseID uint, req *RateCourseRequest) (*models.Enrollment, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "rate"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		now := time.Now()
		enrollment.Rating = &req.Rating
		enrollment.ReviewText = req.ReviewText
		enrollment.IsReviewPublic = req.IsReviewPublic && req.ReviewText != nil
		enrollment.RatedAt = &now
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course rated", "student_id", studentID, "course_id", courseID, "rating", req.Rating)
	publishEvent(ctx, s.publisher, s.logger, events.EnrollmentRated, enrollmentEvent(enrollment, actor.ID))
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID})

	return enrollment, nil
}

func (s *enrollmentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func setCompletion(enrollment *models.Enrollment, status models.CompletionStatus) {
	enrollment.CompletionStatus = status
	if status == models.CompletionCompleted {
		today := models.Today()
		enrollment.CompletionDate = &today
		return
	}
	enrollment.CompletionDate = nil
}
