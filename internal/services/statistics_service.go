package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// DefaultRecomputeTimeout bounds one triggered recompute
const DefaultRecomputeTimeout = 30 * time.Second

type statisticsService struct {
	repo    repositories.Repository
	db      *gorm.DB
	logger  *slog.Logger
	timeout time.Duration

	inflight sync.WaitGroup
}

func NewStatisticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, timeout time.Duration) StatisticsService {
	if timeout <= 0 {
		timeout = DefaultRecomputeTimeout
	}
	return &statisticsService{
		repo:    repo,
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

// TriggerRecompute runs Recompute in the background. Failures are logged
// and never reach the caller whose write caused the trigger.
func (s *statisticsService) TriggerRecompute(req RecomputeRequest) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Statistics recompute panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.Recompute(ctx, req); err != nil {
			s.logger.Warn("Statistics recompute failed",
				"course_id", req.CourseID,
				"student_id", req.StudentID,
				"error", err)
		}
	}()
}

func (s *statisticsService) Wait() {
	s.inflight.Wait()
}

// Recompute refreshes the rows named by req. A course refresh also
// refreshes the instructors teaching it.
func (s *statisticsService) Recompute(ctx context.Context, req RecomputeRequest) error {
	var errs []error

	instructors := append([]string(nil), req.InstructorIDs...)
	if req.CourseID != 0 {
		if err := s.recomputeCourse(ctx, req.CourseID); err != nil {
			errs = append(errs, err)
		}
		teachings, err := s.repo.Teaching().ListByCourse(ctx, s.db, req.CourseID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to list course instructors: %w", err))
		}
		for _, t := range teachings {
			instructors = append(instructors, t.InstructorID)
		}
	}

	if req.StudentID != "" {
		if err := s.recomputeStudent(ctx, req.StudentID); err != nil {
			errs = append(errs, err)
		}
	}

	seen := make(map[string]bool, len(instructors))
	for _, id := range instructors {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := s.recomputeInstructor(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// RecomputeAll sweeps every course, student and instructor. A failed row is
// counted and logged; the sweep continues.
func (s *statisticsService) RecomputeAll(ctx context.Context) (*RecomputeSummary, error) {
	start := time.Now()
	summary := &RecomputeSummary{}

	courseIDs, err := s.repo.Course().ListIDs(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	studentIDs, err := s.repo.Enrollment().ListStudentIDs(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	instructorIDs, err := s.repo.Teaching().ListInstructorIDs(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}

	for _, id := range courseIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.recomputeCourse(ctx, id); err != nil {
			summary.Failures++
			s.logger.Warn("Course statistics failed", "course_id", id, "error", err)
			continue
		}
		summary.Courses++
	}

	for _, id := range studentIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.recomputeStudent(ctx, id); err != nil {
			summary.Failures++
			s.logger.Warn("Student statistics failed", "student_id", id, "error", err)
			continue
		}
		summary.Students++
	}

	for _, id := range instructorIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.recomputeInstructor(ctx, id); err != nil {
			summary.Failures++
			s.logger.Warn("Instructor statistics failed", "instructor_id", id, "error", err)
			continue
		}
		summary.Instructors++
	}

	summary.Duration = time.Since(start)
	s.logger.Info("Statistics sweep finished",
		"courses", summary.Courses,
		"students", summary.Students,
		"instructors", summary.Instructors,
		"failures", summary.Failures,
		"duration", summary.Duration)

	return summary, nil
}

// GetCourse computes the row on first read
func (s *statisticsService) GetCourse(ctx context.Context, courseID uint) (*models.CourseStatistics, error) {
	stats, err := s.repo.Statistics().GetCourse(ctx, s.db, courseID)
	if err == nil {
		return stats, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get course statistics: %w", err)
	}

	if _, err := loadCourse(ctx, s.repo, s.db, courseID); err != nil {
		return nil, err
	}
	if err := s.recomputeCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.Statistics().GetCourse(ctx, s.db, courseID)
}

func (s *statisticsService) GetStudent(ctx context.Context, actor *models.User, studentID string) (*models.StudentStatistics, error) {
	if err := authorizeReporting(actor, studentID, "student statistics"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Statistics().GetStudent(ctx, s.db, studentID)
	if err == nil {
		return stats, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get student statistics: %w", err)
	}

	if err := ensureStudent(ctx, s.repo, studentID); err != nil {
		return nil, err
	}
	if err := s.recomputeStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.repo.Statistics().GetStudent(ctx, s.db, studentID)
}

func (s *statisticsService) GetInstructor(ctx context.Context, actor *models.User, instructorID string) (*models.InstructorStatistics, error) {
	if err := authorizeReporting(actor, instructorID, "instructor statistics"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Statistics().GetInstructor(ctx, s.db, instructorID)
	if err == nil {
		return stats, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get instructor statistics: %w", err)
	}

	if err := s.recomputeInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	return s.repo.Statistics().GetInstructor(ctx, s.db, instructorID)
}

// ===== HELPERS =====

func (s *statisticsService) recomputeCourse(ctx context.Context, courseID uint) error {
	stats, err := s.repo.Statistics().ComputeCourse(ctx, s.db, courseID)
	if err != nil {
		return fmt.Errorf("failed to compute course %d statistics: %w", courseID, err)
	}
	if err := s.repo.Statistics().UpsertCourse(ctx, s.db, stats); err != nil {
		return fmt.Errorf("failed to store course %d statistics: %w", courseID, err)
	}
	return nil
}

func (s *statisticsService) recomputeStudent(ctx context.Context, studentID string) error {
	stats, err := s.repo.Statistics().ComputeStudent(ctx, s.db, studentID)
	if err != nil {
		return fmt.Errorf("failed to compute student %s statistics: %w", studentID, err)
	}
	if err := s.repo.Statistics().UpsertStudent(ctx, s.db, stats); err != nil {
		return fmt.Errorf("failed to store student %s statistics: %w", studentID, err)
	}
	return nil
}

func (s *statisticsService) recomputeInstructor(ctx context.Context, instructorID string) error {
	stats, err := s.repo.Statistics().ComputeInstructor(ctx, s.db, instructorID)
	if err != nil {
		return fmt.Errorf("failed to compute instructor %s statistics: %w", instructorID, err)
	}
	if err := s.repo.Statistics().UpsertInstructor(ctx, s.db, stats); err != nil {
		return fmt.Errorf("failed to store instructor %s statistics: %w", instructorID, err)
	}
	return nil
}

// authorizeReporting lets users read their own numbers and analysts or admins read anyone's
func authorizeReporting(actor *models.User, subjectID, resource string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.ID == subjectID || actor.IsAdmin() || actor.Role == models.RoleAnalyst {
		return nil
	}
	return NewPermissionError(actor.ID, 0, resource, "read", "not the subject, an analyst or an admin")
}
