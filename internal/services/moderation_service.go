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

type moderationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	stats     StatisticsTrigger
	publisher events.EventPublisher
}

func NewModerationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, stats StatisticsTrigger, publisher events.EventPublisher) ModerationService {
	return &moderationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		stats:     stats,
		publisher: publisher,
	}
}

// DeleteReview removes both the rating and the review text
func (s *moderationService) DeleteReview(ctx context.Context, actor *models.User, studentID string, courseID uint, req *ModerationReasonRequest) (*models.Enrollment, error) {
	return s.moderate(ctx, actor, studentID, courseID, "delete review", req, func(e *models.Enrollment) {
		e.Rating = nil
		e.ReviewText = nil
		e.IsReviewPublic = false
		e.RatedAt = nil
	})
}

func (s *moderationService) OverrideRating(ctx context.Context, actor *models.User, studentID string, courseID uint, req *OverrideRatingRequest) (*models.Enrollment, error) {
	if err := authorizeSeniorAdmin(actor, courseID, "enrollment", "override rating"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rating := req.Rating
	return s.moderate(ctx, actor, studentID, courseID, "override rating", &ModerationReasonRequest{Reason: req.Reason}, func(e *models.Enrollment) {
		now := time.Now()
		e.Rating = &rating
		e.RatedAt = &now
	})
}

func (s *moderationService) ForceCompletion(ctx context.Context, actor *models.User, studentID string, courseID uint, req *ModerationReasonRequest) (*models.Enrollment, error) {
	return s.moderate(ctx, actor, studentID, courseID, "force completion", req, func(e *models.Enrollment) {
		setCompletion(e, models.CompletionCompleted)
	})
}

// moderate locks the enrollment, applies mutate and records the action
func (s *moderationService) moderate(ctx context.Context, actor *models.User, studentID string, courseID uint, action string, req *ModerationReasonRequest, mutate func(*models.Enrollment)) (*models.Enrollment, error) {
	if err := authorizeSeniorAdmin(actor, courseID, "enrollment", action); err != nil {
		return nil, err
	}
	if req != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
	}

	var enrollment *models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		mutate(enrollment)
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to %s: %w", action, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var reason string
	if req != nil && req.Reason != nil {
		reason = *req.Reason
	}
	s.logger.Info("Enrollment moderated",
		"action", action,
		"admin_id", actor.ID,
		"student_id", studentID,
		"course_id", courseID,
		"reason", reason)

	publishEvent(ctx, s.publisher, s.logger, events.EnrollmentReviewModerated, enrollmentEvent(enrollment, actor.ID))
	triggerStats(s.stats, RecomputeRequest{CourseID: courseID, StudentID: studentID})

	return enrollment, nil
}
