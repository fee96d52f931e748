package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type teachingService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	stats     StatisticsTrigger
}

func NewTeachingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, stats StatisticsTrigger) TeachingService {
	return &teachingService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		stats:     stats,
	}
}

func (s *teachingService) Assign(ctx context.Context, actor *models.User, courseID uint, req *AssignInstructorRequest) (*models.Teaching, error) {
	if err := authorizeAdmin(actor, courseID, "teaching", "assign"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	isInstructor, err := s.repo.User().HasRole(ctx, req.InstructorID, models.RoleInstructor)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "check instructor role")
	}
	if !isInstructor {
		return nil, ErrNotAnInstructor
	}

	teaching := &models.Teaching{
		InstructorID: req.InstructorID,
		CourseID:     courseID,
		AssignedBy:   actor.ID,
		AssignedAt:   time.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadCourse(ctx, s.repo, tx, courseID); err != nil {
			return err
		}

		exists, err := s.repo.Teaching().Exists(ctx, tx, req.InstructorID, courseID)
		if err != nil {
			return fmt.Errorf("failed to check teaching assignment: %w", err)
		}
		if exists {
			return ErrInstructorAlreadyAssigned
		}

		if err := s.repo.Teaching().Assign(ctx, tx, teaching); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrInstructorAlreadyAssigned
			}
			return fmt.Errorf("failed to assign instructor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Instructor assigned", "instructor_id", req.InstructorID, "course_id", courseID, "admin_id", actor.ID)
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID, InstructorIDs: []string{req.InstructorID}})

	return teaching, nil
}

func (s *teachingService) Remove(ctx context.Context, actor *models.User, courseID uint, instructorID string) error {
	if err := authorizeAdmin(actor, courseID, "teaching", "remove"); err != nil {
		return err
	}

	if err := s.repo.Teaching().Remove(ctx, s.db, instructorID, courseID); err != nil {
		return notFoundAs(err, ErrTeachingNotFound, "remove instructor")
	}

	s.logger.Info("Instructor removed", "instructor_id", instructorID, "course_id", courseID, "admin_id", actor.ID)
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID, InstructorIDs: []string{instructorID}})

	return nil
}

func (s *teachingService) ListByCourse(ctx context.Context, courseID uint) ([]*models.Teaching, error) {
	if _, err := loadCourse(ctx, s.repo, s.db, courseID); err != nil {
		return nil, err
	}
	teachings, err := s.repo.Teaching().ListByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}
	return teachings, nil
}
