package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// fakeUsers stands in for the identity provider
type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return f.List(ctx, filters)
}

func (f *fakeUsers) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUsers) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Role == role, nil
}

// statsRecorder captures recompute triggers instead of running them
type statsRecorder struct {
	mu       sync.Mutex
	requests []RecomputeRequest
}

func (r *statsRecorder) TriggerRecompute(req RecomputeRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *statsRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type fixture struct {
	db        *gorm.DB
	repo      repositories.Repository
	users     *fakeUsers
	stats     *statsRecorder
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	student    *models.User
	other      *models.User
	instructor *models.User
	admin      *models.User
	senior     *models.User
	analyst    *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:svc_"+name+"?mode=memory&cache=shared"), &gorm.Config{
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

	users := &fakeUsers{users: map[string]*models.User{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, UserRepository: users}),
		users:     users,
		stats:     &statsRecorder{},
		publisher: events.NewMockEventPublisher(log),
		logger:    log,
		validator: validator.New(),
	}

	f.student = users.add(&models.User{ID: "student-1", Role: models.RoleStudent})
	f.other = users.add(&models.User{ID: "student-2", Role: models.RoleStudent})
	f.instructor = users.add(&models.User{ID: "instructor-1", Role: models.RoleInstructor})
	f.admin = users.add(&models.User{ID: "admin-1", Role: models.RoleAdmin, AdminLevel: models.AdminJunior})
	f.senior = users.add(&models.User{ID: "admin-2", Role: models.RoleAdmin, AdminLevel: models.AdminSenior})
	f.analyst = users.add(&models.User{ID: "analyst-1", Role: models.RoleAnalyst})
	return f
}

func (f *fixture) course(t *testing.T, title string, answerKey *string) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:         title,
		Status:        models.CourseApproved,
		CreatedBy:     f.instructor.ID,
		QuizAnswerKey: answerKey,
	}
	if err := f.repo.Course().Create(context.Background(), nil, course); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func (f *fixture) topic(t *testing.T, courseID uint, name string, order int) *models.Topic {
	t.Helper()
	ctx := context.Background()
	topic := &models.Topic{Name: name}
	if err := f.repo.Topic().Create(ctx, nil, topic); err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	if courseID != 0 {
		mapping := &models.CourseTopic{CourseID: courseID, TopicID: topic.ID, SequenceOrder: order}
		if err := f.repo.Topic().MapToCourse(ctx, nil, mapping); err != nil {
			t.Fatalf("map topic: %v", err)
		}
	}
	return topic
}

func (f *fixture) enroll(t *testing.T, studentID string, courseID uint) {
	t.Helper()
	enrollment := &models.Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		EnrollmentDate:   models.Today(),
		Status:           models.EnrollmentActive,
		CompletionStatus: models.CompletionInProgress,
	}
	if err := f.repo.Enrollment().Create(context.Background(), nil, enrollment); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
}

func (f *fixture) enrollment(t *testing.T, studentID string, courseID uint) *models.Enrollment {
	t.Helper()
	e, err := f.repo.Enrollment().Get(context.Background(), nil, studentID, courseID)
	if err != nil {
		t.Fatalf("get enrollment: %v", err)
	}
	return e
}

// walkCourse seeds regular topics T1..T3 plus the final assessment at order 4
func (f *fixture) walkCourse(t *testing.T, answerKey *string) (*models.Course, []*models.Topic) {
	t.Helper()
	course := f.course(t, "Walk Course", answerKey)
	topics := []*models.Topic{
		f.topic(t, course.ID, "T1", 1),
		f.topic(t, course.ID, "T2", 2),
		f.topic(t, course.ID, "T3", 3),
		f.topic(t, course.ID, models.FinalAssessmentTopic, 4),
	}
	return course, topics
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }
