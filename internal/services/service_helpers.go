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

// ===== PERMISSION HELPERS =====

func requireActor(actor *models.User) error {
	if actor == nil || actor.ID == "" {
		return ErrUnauthorized
	}
	return nil
}

// authorizeSelfOrAdmin allows students to act on their own records and admins on any
func authorizeSelfOrAdmin(actor *models.User, studentID string, courseID uint, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.ID == studentID || actor.IsAdmin() {
		return nil
	}
	return NewPermissionError(actor.ID, courseID, "enrollment", action, "not the enrolled student")
}

func authorizeAdmin(actor *models.User, resourceID uint, resource, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, resourceID, resource, action, "admin role required")
	}
	return nil
}

func authorizeSeniorAdmin(actor *models.User, resourceID uint, resource, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsSeniorAdmin() {
		return NewPermissionError(actor.ID, resourceID, resource, action, "senior admin required")
	}
	return nil
}

func canAuthorCourses(actor *models.User) bool {
	return actor != nil && (actor.Role == models.RoleInstructor || actor.IsAdmin())
}

// isCourseStaff reports whether actor created, teaches or administers the course
func isCourseStaff(ctx context.Context, repo repositories.Repository, db *gorm.DB, actor *models.User, course *models.Course) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.IsAdmin() || course.CreatedBy == actor.ID {
		return true, nil
	}
	if actor.Role != models.RoleInstructor {
		return false, nil
	}
	teaches, err := repo.Teaching().Exists(ctx, db, actor.ID, course.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check teaching assignment: %w", err)
	}
	return teaches, nil
}

// ===== LOOKUP HELPERS =====

func ensureStudent(ctx context.Context, repo repositories.Repository, studentID string) error {
	exists, err := repo.User().ExistsByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return ErrStudentNotFound
	}
	return nil
}

func loadCourse(ctx context.Context, repo repositories.Repository, tx *gorm.DB, courseID uint) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, tx, courseID)
	if err != nil {
		return nil, notFoundAs(err, ErrCourseNotFound, "get course")
	}
	return course, nil
}

func lockEnrollment(ctx context.Context, repo repositories.Repository, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error) {
	enrollment, err := repo.Enrollment().GetForUpdate(ctx, tx, studentID, courseID)
	if err != nil {
		return nil, notFoundAs(err, ErrEnrollmentNotFound, "get enrollment")
	}
	return enrollment, nil
}

// ===== SIDE EFFECTS =====

// publishEvent is best effort; the primary write has already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "event_id", event.ID, "error", err)
	}
}

func enrollmentEvent(e *models.Enrollment, actorID string) events.EnrollmentEvent {
	return events.EnrollmentEvent{
		StudentID:        e.StudentID,
		CourseID:         e.CourseID,
		CompletionStatus: string(e.CompletionStatus),
		CurrentTopicID:   e.CurrentTopicID,
		Grade:            e.Grade,
		Rating:           e.Rating,
		ActorID:          actorID,
	}
}

func triggerStats(stats StatisticsTrigger, req RecomputeRequest) {
	if stats != nil {
		stats.TriggerRecompute(req)
	}
}

func pageOf(limit, offset int) (page, size int) {
	if limit <= 0 {
		limit = 10
	}
	return offset/limit + 1, limit
}
