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

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	stats     StatisticsTrigger
	publisher events.EventPublisher
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, stats StatisticsTrigger, publisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:      repo,
		db:        db,
		logger:    logger,
		stats:     stats,
		publisher: publisher,
	}
}

// Advance points the enrollment at topicID. The caller decides which topic
// was just completed; the only requirement is that it is mapped to the course.
func (s *progressService) Advance(ctx context.Context, actor *models.User, studentID string, courseID, topicID uint) (*ProgressResponse, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "advance"); err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	var topic *models.Topic
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureScope(ctx, tx, studentID, courseID); err != nil {
			return err
		}

		mapping, err := s.getMapping(ctx, tx, courseID, topicID)
		if err != nil {
			return err
		}
		topic = &mapping.Topic

		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		enrollment.CurrentTopicID = &topicID
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress advanced", "student_id", studentID, "course_id", courseID, "topic_id", topicID)
	s.afterWrite(ctx, enrollment, actor)

	return &ProgressResponse{
		StudentID:      studentID,
		CourseID:       courseID,
		CurrentTopicID: enrollment.CurrentTopicID,
		CurrentTopic:   topic,
		Message:        fmt.Sprintf("Progress updated to %s", topic.Name),
	}, nil
}

// Rollback un-checks topicID, moving the pointer to the preceding regular topic
func (s *progressService) Rollback(ctx context.Context, actor *models.User, studentID string, courseID, topicID uint) (*ProgressResponse, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "rollback"); err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	var target *models.Topic
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureScope(ctx, tx, studentID, courseID); err != nil {
			return err
		}

		mapping, err := s.getMapping(ctx, tx, courseID, topicID)
		if err != nil {
			return err
		}
		if mapping.Topic.IsFinalAssessment() {
			return ErrFinalAssessmentNavigation
		}

		walk, err := s.walk(ctx, tx, courseID)
		if err != nil {
			return err
		}
		targetID, ok := RollbackTarget(walk, topicID)
		if !ok {
			return ErrTopicNotMapped
		}
		target = topicIn(walk, targetID)

		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		enrollment.CurrentTopicID = targetID
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to roll back progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress rolled back", "student_id", studentID, "course_id", courseID, "from_topic_id", topicID, "current_topic_id", enrollment.CurrentTopicID)
	s.afterWrite(ctx, enrollment, actor)

	message := "Progress cleared"
	if target != nil {
		message = fmt.Sprintf("Progress rolled back to %s", target.Name)
	}
	return &ProgressResponse{
		StudentID:      studentID,
		CourseID:       courseID,
		CurrentTopicID: enrollment.CurrentTopicID,
		CurrentTopic:   target,
		Message:        message,
	}, nil
}

// Reset points the enrollment at the first regular topic of the course
func (s *progressService) Reset(ctx context.Context, actor *models.User, studentID string, courseID uint) (*ProgressResponse, error) {
	if err := authorizeSelfOrAdmin(actor, studentID, courseID, "reset"); err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	var first *models.Topic
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureScope(ctx, tx, studentID, courseID); err != nil {
			return err
		}

		var err error
		enrollment, err = lockEnrollment(ctx, s.repo, tx, studentID, courseID)
		if err != nil {
			return err
		}

		walk, err := s.walk(ctx, tx, courseID)
		if err != nil {
			return err
		}
		firstID, err := ResetTarget(walk)
		if err != nil {
			return err
		}
		first = topicIn(walk, &firstID)

		enrollment.CurrentTopicID = &firstID
		if err := s.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress reset", "student_id", studentID, "course_id", courseID, "topic_id", first.ID)
	s.afterWrite(ctx, enrollment, actor)

	return &ProgressResponse{
		StudentID:      studentID,
		CourseID:       courseID,
		CurrentTopicID: enrollment.CurrentTopicID,
		CurrentTopic:   first,
		Message:        fmt.Sprintf("Progress reset to %s", first.Name),
	}, nil
}

// ===== HELPERS =====

func (s *progressService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *progressService) ensureScope(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) error {
	if err := ensureStudent(ctx, s.repo, studentID); err != nil {
		return err
	}
	_, err := loadCourse(ctx, s.repo, tx, courseID)
	return err
}

func (s *progressService) getMapping(ctx context.Context, tx *gorm.DB, courseID, topicID uint) (*models.CourseTopic, error) {
	if _, err := s.repo.Topic().GetByID(ctx, tx, topicID); err != nil {
		return nil, notFoundAs(err, ErrTopicNotFound, "get topic")
	}
	mapping, err := s.repo.Topic().GetMapping(ctx, tx, courseID, topicID)
	if err != nil {
		return nil, notFoundAs(err, ErrTopicNotMapped, "get topic mapping")
	}
	return mapping, nil
}

// walk rebuilds the ordered regular topics from the current mappings
func (s *progressService) walk(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Topic, error) {
	mappings, err := s.repo.Topic().GetCourseTopics(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course topics: %w", err)
	}
	return RegularTopics(mappings), nil
}

func (s *progressService) afterWrite(ctx context.Context, enrollment *models.Enrollment, actor *models.User) {
	publishEvent(ctx, s.publisher, s.logger, events.EnrollmentProgressUpdated, enrollmentEvent(enrollment, actor.ID))
	triggerStats(s.stats, RecomputeRequest{CourseID: enrollment.CourseID, StudentID: enrollment.StudentID})
}

func topicIn(walk []models.Topic, id *uint) *models.Topic {
	if id == nil {
		return nil
	}
	for i := range walk {
		if walk[i].ID == *id {
			return &walk[i]
		}
	}
	return nil
}
