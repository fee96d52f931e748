package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Create stores a pending course. Courses created by admins skip review.
func (s *courseService) Create(ctx context.Context, actor *models.User, req *CreateCourseRequest) (*CourseResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canAuthorCourses(actor) {
		return nil, NewPermissionError(actor.ID, 0, "course", "create", "instructor or admin role required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.UniversityID != nil {
		if _, err := s.repo.University().GetByID(ctx, s.db, *req.UniversityID); err != nil {
			return nil, notFoundAs(err, ErrUniversityNotFound, "get university")
		}
	}

	course := &models.Course{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Category:      req.Category,
		Level:         strings.ToLower(req.Level),
		Language:      req.Language,
		Duration:      req.Duration,
		UniversityID:  req.UniversityID,
		QuizAnswerKey: normalizeKey(req.QuizAnswerKey),
		Status:        models.CoursePending,
		CreatedBy:     actor.ID,
	}
	if req.StartDate != nil {
		d := datatypes.Date(*req.StartDate)
		course.StartDate = &d
	}
	if actor.IsAdmin() {
		course.Status = models.CourseApproved
		course.ReviewedBy = &actor.ID
	}

	if err := s.repo.Course().Create(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "creator_id", actor.ID, "status", course.Status)
	return s.buildResponse(course, true), nil
}

func (s *courseService) GetByID(ctx context.Context, actor *models.User, id uint) (*CourseResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.repo, s.db, id)
	if err != nil {
		return nil, err
	}

	staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
	if err != nil {
		return nil, err
	}
	if !course.IsApproved() && !staff {
		return nil, ErrCourseNotFound
	}

	return s.buildResponse(course, staff), nil
}

// List shows students and analysts approved courses only
func (s *courseService) List(ctx context.Context, actor *models.User, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canAuthorCourses(actor) {
		approved := models.CourseApproved
		filters.Status = &approved
	}

	courses, total, err := s.repo.Course().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	responses := make([]*CourseResponse, len(courses))
	for i, c := range courses {
		responses[i] = s.buildResponse(c, actor.IsAdmin() || c.CreatedBy == actor.ID)
	}

	page, size := pageOf(filters.Limit, filters.Offset)
	return &CourseListResponse{Courses: responses, Total: total, Page: page, Size: size}, nil
}

func (s *courseService) Update(ctx context.Context, actor *models.User, id uint, req *UpdateCourseRequest) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.editableCourse(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if req.UniversityID != nil {
		if _, err := s.repo.University().GetByID(ctx, s.db, *req.UniversityID); err != nil {
			return nil, notFoundAs(err, ErrUniversityNotFound, "get university")
		}
		course.UniversityID = req.UniversityID
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = strings.ToLower(*req.Level)
	}
	if req.Language != nil {
		course.Language = *req.Language
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.StartDate != nil {
		d := datatypes.Date(*req.StartDate)
		course.StartDate = &d
	}

	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("Course updated", "course_id", id, "actor_id", actor.ID)
	return s.buildResponse(course, true), nil
}

// Delete is limited to admins and the course creator
func (s *courseService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	course, err := loadCourse(ctx, s.repo, s.db, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && course.CreatedBy != actor.ID {
		return NewPermissionError(actor.ID, id, "course", "delete", "not the course creator")
	}

	if err := s.repo.Course().Delete(ctx, s.db, id); err != nil {
		return notFoundAs(err, ErrCourseNotFound, "delete course")
	}

	s.logger.Info("Course deleted", "course_id", id, "actor_id", actor.ID)
	return nil
}

// SetAnswerKey stores the key upper-cased; grading compares case-insensitively
func (s *courseService) SetAnswerKey(ctx context.Context, actor *models.User, id uint, req *SetAnswerKeyRequest) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.editableCourse(ctx, actor, id, "set answer key")
	if err != nil {
		return nil, err
	}

	course.QuizAnswerKey = normalizeKey(&req.AnswerKey)
	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to set answer key: %w", err)
	}

	s.logger.Info("Answer key set", "course_id", id, "length", len(*course.QuizAnswerKey))
	return s.buildResponse(course, true), nil
}

// ===== APPROVAL WORKFLOW =====

func (s *courseService) Approve(ctx context.Context, actor *models.User, id uint, req *ReviewCourseRequest) (*CourseResponse, error) {
	return s.review(ctx, actor, id, req, models.CourseApproved, events.CourseApproved)
}

func (s *courseService) Reject(ctx context.Context, actor *models.User, id uint, req *ReviewCourseRequest) (*CourseResponse, error) {
	return s.review(ctx, actor, id, req, models.CourseRejected, events.CourseRejected)
}

func (s *courseService) review(ctx context.Context, actor *models.User, id uint, req *ReviewCourseRequest, status models.CourseStatus, eventType events.EventType) (*CourseResponse, error) {
	if err := authorizeAdmin(actor, id, "course", "review"); err != nil {
		return nil, err
	}
	if req == nil {
		req = &ReviewCourseRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.repo.Course().UpdateStatus(ctx, s.db, id, status, actor.ID, req.Note); err != nil {
		return nil, notFoundAs(err, ErrCourseNotFound, "review course")
	}

	course, err := loadCourse(ctx, s.repo, s.db, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course reviewed", "course_id", id, "status", status, "reviewer_id", actor.ID)
	publishEvent(ctx, s.publisher, s.logger, eventType, events.CourseReviewEvent{
		CourseID:   course.ID,
		Title:      course.Title,
		CreatedBy:  course.CreatedBy,
		ReviewedBy: actor.ID,
		Note:       req.Note,
	})

	return s.buildResponse(course, true), nil
}

// ===== TOPICS =====

func (s *courseService) CreateTopic(ctx context.Context, actor *models.User, req *CreateTopicRequest) (*models.Topic, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canAuthorCourses(actor) {
		return nil, NewPermissionError(actor.ID, 0, "topic", "create", "instructor or admin role required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	topic := &models.Topic{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.repo.Topic().Create(ctx, s.db, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.logger.Info("Topic created", "topic_id", topic.ID, "name", topic.Name)
	return topic, nil
}

func (s *courseService) ListTopics(ctx context.Context, limit, offset int) (*TopicListResponse, error) {
	topics, total, err := s.repo.Topic().List(ctx, s.db, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return &TopicListResponse{Topics: topics, Total: total}, nil
}

// MapTopic places a topic in the course walk. Without an explicit order a
// regular topic goes last but stays ahead of the final assessment.
func (s *courseService) MapTopic(ctx context.Context, actor *models.User, courseID uint, req *MapTopicRequest) (*models.CourseTopic, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.editableCourse(ctx, actor, courseID, "map topic"); err != nil {
		return nil, err
	}

	var mapping *models.CourseTopic
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		topic, err := s.repo.Topic().GetByID(ctx, tx, req.TopicID)
		if err != nil {
			return notFoundAs(err, ErrTopicNotFound, "get topic")
		}

		order, err := s.placement(ctx, tx, courseID, topic, req.SequenceOrder)
		if err != nil {
			return err
		}

		mapping = &models.CourseTopic{CourseID: courseID, TopicID: topic.ID, SequenceOrder: order, Topic: *topic}
		if err := s.repo.Topic().MapToCourse(ctx, tx, mapping); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrTopicAlreadyMapped
			}
			return fmt.Errorf("failed to map topic: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Topic mapped", "course_id", courseID, "topic_id", req.TopicID, "sequence_order", mapping.SequenceOrder)
	return mapping, nil
}

func (s *courseService) UnmapTopic(ctx context.Context, actor *models.User, courseID, topicID uint) error {
	if _, err := s.editableCourse(ctx, actor, courseID, "unmap topic"); err != nil {
		return err
	}

	var moved int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		mappings, err := s.repo.Topic().GetCourseTopics(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("failed to get course topics: %w", err)
		}
		// students sitting on the removed topic fall back to its predecessor
		target, _ := RollbackTarget(RegularTopics(mappings), topicID)

		if err := s.repo.Topic().UnmapFromCourse(ctx, tx, courseID, topicID); err != nil {
			return notFoundAs(err, ErrTopicNotMapped, "unmap topic")
		}
		moved, err = s.repo.Enrollment().RepointCurrentTopic(ctx, tx, courseID, topicID, target)
		if err != nil {
			return fmt.Errorf("failed to repoint enrollments: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Topic unmapped", "course_id", courseID, "topic_id", topicID, "enrollments_moved", moved)
	return nil
}

func (s *courseService) GetCourseTopics(ctx context.Context, courseID uint) ([]models.CourseTopic, error) {
	if _, err := loadCourse(ctx, s.repo, s.db, courseID); err != nil {
		return nil, err
	}
	mappings, err := s.repo.Topic().GetCourseTopics(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course topics: %w", err)
	}
	return mappings, nil
}

// ===== HELPERS =====

func (s *courseService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *courseService) editableCourse(ctx context.Context, actor *models.User, id uint, action string) (*models.Course, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, s.db, id)
	if err != nil {
		return nil, err
	}
	staff, err := isCourseStaff(ctx, s.repo, s.db, actor, course)
	if err != nil {
		return nil, err
	}
	if !staff {
		return nil, NewPermissionError(actor.ID, id, "course", action, "not course staff")
	}
	return course, nil
}

// placement picks the sequence order for a new mapping. The final
// assessment always ends up last: a regular topic placed at or after it
// pushes it down.
func (s *courseService) placement(ctx context.Context, tx *gorm.DB, courseID uint, topic *models.Topic, requested *int) (int, error) {
	maxOrder, err := s.repo.Topic().MaxSequenceOrder(ctx, tx, courseID)
	if err != nil {
		return 0, err
	}
	if topic.IsFinalAssessment() {
		if requested != nil && *requested > maxOrder {
			return *requested, nil
		}
		return maxOrder + 1, nil
	}

	mappings, err := s.repo.Topic().GetCourseTopics(ctx, tx, courseID)
	if err != nil {
		return 0, err
	}
	if requested != nil {
		for _, m := range mappings {
			if m.Topic.IsFinalAssessment() && *requested >= m.SequenceOrder {
				if err := s.repo.Topic().SetSequenceOrder(ctx, tx, m.ID, max(*requested, maxOrder)+1); err != nil {
					return 0, fmt.Errorf("failed to move final assessment: %w", err)
				}
			}
		}
		return *requested, nil
	}
	for _, m := range mappings {
		if m.Topic.IsFinalAssessment() && m.SequenceOrder == maxOrder {
			if err := s.repo.Topic().SetSequenceOrder(ctx, tx, m.ID, maxOrder+1); err != nil {
				return 0, fmt.Errorf("failed to move final assessment: %w", err)
			}
			return maxOrder, nil
		}
	}
	return maxOrder + 1, nil
}

func (s *courseService) buildResponse(course *models.Course, staff bool) *CourseResponse {
	if !staff {
		course.HideAnswerKey()
	}
	return &CourseResponse{Course: course, CanEdit: staff}
}

func normalizeKey(key *string) *string {
	if key == nil {
		return nil
	}
	k := strings.ToUpper(strings.TrimSpace(*key))
	if k == "" {
		return nil
	}
	return &k
}
