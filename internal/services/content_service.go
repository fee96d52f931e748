package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewContentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ContentService {
	return &contentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// Create records content metadata. Instructors must teach the course and a
// topic, when given, must be mapped to it.
func (s *contentService) Create(ctx context.Context, actor *models.User, courseID uint, req *CreateContentRequest) (*models.ContentItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canAuthorCourses(actor) {
		return nil, NewPermissionError(actor.ID, courseID, "content", "upload", "instructor or admin role required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.repo, s.db, courseID)
	if err != nil {
		return nil, err
	}
	staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
	if err != nil {
		return nil, err
	}
	if !staff {
		return nil, NewPermissionError(actor.ID, courseID, "content", "upload", "instructor does not teach this course")
	}

	if req.TopicID != nil {
		if _, err := s.repo.Topic().GetMapping(ctx, s.db, courseID, *req.TopicID); err != nil {
			return nil, notFoundAs(err, ErrTopicNotMapped, "get topic mapping")
		}
	}

	item := &models.ContentItem{
		CourseID:     courseID,
		TopicID:      req.TopicID,
		InstructorID: actor.ID,
		Title:        strings.TrimSpace(req.Title),
		ContentType:  req.ContentType,
		URL:          req.URL,
		Description:  req.Description,
	}
	if err := s.repo.Content().Create(ctx, s.db, item); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	s.logger.Info("Content uploaded", "content_id", item.ID, "course_id", courseID, "type", item.ContentType)
	return item, nil
}

func (s *contentService) ListByCourse(ctx context.Context, courseID uint) ([]*models.ContentItem, error) {
	if _, err := loadCourse(ctx, s.repo, s.db, courseID); err != nil {
		return nil, err
	}
	items, err := s.repo.Content().ListByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

// Delete is allowed to admins and the uploader
func (s *contentService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	item, err := s.repo.Content().GetByID(ctx, s.db, id)
	if err != nil {
		return notFoundAs(err, ErrContentNotFound, "get content")
	}
	if !actor.IsAdmin() && item.InstructorID != actor.ID {
		return NewPermissionError(actor.ID, id, "content", "delete", "not the uploader")
	}

	if err := s.repo.Content().Delete(ctx, s.db, id); err != nil {
		return notFoundAs(err, ErrContentNotFound, "delete content")
	}

	s.logger.Info("Content deleted", "content_id", id, "actor_id", actor.ID)
	return nil
}
