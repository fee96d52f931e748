package postgres

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// newTestDB opens a private in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, title string) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, Status: models.CourseApproved, CreatedBy: "instructor-1"}
	if err := NewCoursePostgreSQL(db, nil).Create(context.Background(), nil, course); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func seedTopic(t *testing.T, db *gorm.DB, courseID uint, name string, order int) *models.Topic {
	t.Helper()
	ctx := context.Background()
	repo := NewTopicPostgreSQL(db)

	topic := &models.Topic{Name: name}
	if err := repo.Create(ctx, nil, topic); err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	if err := repo.MapToCourse(ctx, nil, &models.CourseTopic{CourseID: courseID, TopicID: topic.ID, SequenceOrder: order}); err != nil {
		t.Fatalf("map topic: %v", err)
	}
	return topic
}

func seedEnrollment(t *testing.T, db *gorm.DB, studentID string, courseID uint, status models.CompletionStatus, rating *int) {
	t.Helper()
	enrollment := &models.Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		EnrollmentDate:   models.Today(),
		Status:           models.EnrollmentActive,
		CompletionStatus: status,
		Rating:           rating,
	}
	if err := NewEnrollmentPostgreSQL(db).Create(context.Background(), nil, enrollment); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
}

func intPtr(v int) *int { return &v }
