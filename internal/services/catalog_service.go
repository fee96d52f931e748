package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/catalog"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// CatalogAuthor owns catalog courses that do not name a creator
const CatalogAuthor = "catalog"

type catalogService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) CatalogService {
	return &catalogService{repo: repo, db: db, logger: logger}
}

// Seed creates whatever is missing from each document. Existing courses,
// topics, mappings and quizzes are left as they are, so seeding twice is a no-op.
func (s *catalogService) Seed(ctx context.Context, docs []*catalog.CourseDocument) (*SeedSummary, error) {
	summary := &SeedSummary{}
	for _, doc := range docs {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.seedDocument(ctx, tx, doc, summary)
		})
		if err != nil {
			return summary, fmt.Errorf("failed to seed %s: %w", doc.Path, err)
		}
	}

	s.logger.Info("Catalog seeded",
		"documents", len(docs),
		"universities", summary.Universities,
		"courses", summary.Courses,
		"topics", summary.Topics,
		"quizzes", summary.Quizzes)
	return summary, nil
}

func (s *catalogService) seedDocument(ctx context.Context, tx *gorm.DB, doc *catalog.CourseDocument, summary *SeedSummary) error {
	var universityID *uint
	if doc.University != nil {
		university, created, err := s.university(ctx, tx, doc.University)
		if err != nil {
			return err
		}
		if created {
			summary.Universities++
		}
		universityID = &university.ID
	}

	course, created, err := s.course(ctx, tx, &doc.Course, universityID)
	if err != nil {
		return err
	}
	if created {
		summary.Courses++
	}

	for i, entry := range doc.Topics {
		mapped, err := s.mapTopic(ctx, tx, course.ID, entry, i+1)
		if err != nil {
			return err
		}
		if mapped {
			summary.Topics++
		}
	}

	if doc.Quiz != nil {
		seeded, err := s.quiz(ctx, tx, course.ID, doc.Quiz)
		if err != nil {
			return err
		}
		if seeded {
			summary.Quizzes++
		}
	}
	return nil
}

func (s *catalogService) university(ctx context.Context, tx *gorm.DB, entry *catalog.UniversityEntry) (*models.University, bool, error) {
	existing, err := s.repo.University().GetByName(ctx, tx, entry.Name)
	if err == nil {
		return existing, false, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, false, fmt.Errorf("failed to look up university: %w", err)
	}

	university := &models.University{Name: entry.Name, Region: entry.Region, Country: entry.Country}
	if entry.Website != "" {
		university.Website = &entry.Website
	}
	if err := s.repo.University().Create(ctx, tx, university); err != nil {
		return nil, false, fmt.Errorf("failed to create university: %w", err)
	}
	return university, true, nil
}

func (s *catalogService) course(ctx context.Context, tx *gorm.DB, entry *catalog.CourseEntry, universityID *uint) (*models.Course, bool, error) {
	matches, _, err := s.repo.Course().List(ctx, tx, repositories.CourseFilters{Query: entry.Title, Limit: 100})
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up course: %w", err)
	}
	for _, c := range matches {
		if strings.EqualFold(c.Title, entry.Title) {
			return c, false, nil
		}
	}

	author := entry.CreatedBy
	if author == "" {
		author = CatalogAuthor
	}
	course := &models.Course{
		Title:         entry.Title,
		Category:      entry.Category,
		Level:         strings.ToLower(entry.Level),
		Language:      entry.Language,
		Duration:      entry.Duration,
		UniversityID:  universityID,
		QuizAnswerKey: normalizeKey(&entry.AnswerKey),
		Status:        models.CourseApproved,
		CreatedBy:     author,
	}
	if entry.Description != "" {
		course.Description = &entry.Description
	}
	if err := s.repo.Course().Create(ctx, tx, course); err != nil {
		return nil, false, fmt.Errorf("failed to create course: %w", err)
	}
	return course, true, nil
}

func (s *catalogService) mapTopic(ctx context.Context, tx *gorm.DB, courseID uint, entry catalog.TopicEntry, order int) (bool, error) {
	topic, err := s.repo.Topic().GetByName(ctx, tx, entry.Name)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return false, fmt.Errorf("failed to look up topic: %w", err)
		}
		topic = &models.Topic{Name: entry.Name}
		if entry.Description != "" {
			topic.Description = &entry.Description
		}
		if err := s.repo.Topic().Create(ctx, tx, topic); err != nil {
			return false, fmt.Errorf("failed to create topic: %w", err)
		}
	}

	_, err = s.repo.Topic().GetMapping(ctx, tx, courseID, topic.ID)
	if err == nil {
		return false, nil
	}
	if !repositories.IsNotFoundError(err) {
		return false, fmt.Errorf("failed to look up topic mapping: %w", err)
	}

	mapping := &models.CourseTopic{CourseID: courseID, TopicID: topic.ID, SequenceOrder: order}
	if err := s.repo.Topic().MapToCourse(ctx, tx, mapping); err != nil {
		return false, fmt.Errorf("failed to map topic: %w", err)
	}
	return true, nil
}

func (s *catalogService) quiz(ctx context.Context, tx *gorm.DB, courseID uint, entry *catalog.QuizEntry) (bool, error) {
	existing, err := s.repo.Quiz().GetByCourseID(ctx, tx, courseID)
	if err == nil && len(existing.Questions) > 0 {
		return false, nil
	}
	if err != nil && !repositories.IsNotFoundError(err) {
		return false, fmt.Errorf("failed to look up quiz: %w", err)
	}

	questions := make([]models.QuizQuestion, len(entry.Questions))
	for i, q := range entry.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return false, fmt.Errorf("failed to encode options: %w", err)
		}
		questions[i] = models.QuizQuestion{
			Position:      i + 1,
			Prompt:        q.Prompt,
			Options:       datatypes.JSON(options),
			CorrectAnswer: strings.ToUpper(q.Answer),
		}
	}

	quiz := &models.Quiz{CourseID: courseID, Title: entry.Title, CreatedBy: CatalogAuthor}
	if err := s.repo.Quiz().ReplaceQuestions(ctx, tx, quiz, questions); err != nil {
		return false, fmt.Errorf("failed to seed quiz: %w", err)
	}
	return true, nil
}
