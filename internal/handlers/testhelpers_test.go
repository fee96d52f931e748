package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// directory is an in-memory identity provider keyed by user ID
type directory map[string]*models.User

func (d directory) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
}

func (d directory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range d {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (d directory) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := d[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d directory) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(d))
	for _, u := range d {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (d directory) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range d {
		if strings.Contains(u.ID, query) {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (d directory) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := d[id]
	return ok, nil
}

func (d directory) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	u, ok := d[id]
	return ok && u.Role == role, nil
}

type testServer struct {
	router *gin.Engine
	repo   repositories.Repository
	sm     services.ServiceManager
}

// newTestServer wires the full router on sqlite; the bearer token is the user ID
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:http_"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	users := directory{
		"student-1":    {ID: "student-1", Role: models.RoleStudent},
		"student-2":    {ID: "student-2", Role: models.RoleStudent},
		"instructor-1": {ID: "instructor-1", Role: models.RoleInstructor},
		"admin-1":      {ID: "admin-1", Role: models.RoleAdmin, AdminLevel: models.AdminJunior},
		"admin-2":      {ID: "admin-2", Role: models.RoleAdmin, AdminLevel: models.AdminSenior},
		"analyst-1":    {ID: "analyst-1", Role: models.RoleAnalyst},
	}

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogLogger)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, UserRepository: users})
	sm := services.NewServiceManager(db, repo, slogLogger, validator.New(), events.NewMockEventPublisher(slogLogger), services.DefaultServiceManagerConfig())
	require.NoError(t, sm.Initialize(context.Background()))
	t.Cleanup(func() { _ = sm.Shutdown(context.Background()) })

	parse := func(token string) (*casdoorsdk.Claims, error) {
		if token == "bad" {
			return nil, fmt.Errorf("signature is invalid")
		}
		return &casdoorsdk.Claims{User: casdoorsdk.User{Id: token}}, nil
	}
	auth := NewAuthMiddlewareWithParser(parse, users, logger)

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, users, auth, logger).SetupRoutes(router)

	return &testServer{router: router, repo: repo, sm: sm}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, userID)
}

func (s *testServer) send(req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// course seeds an approved course owned by instructor-1 with topics T1..T3 and the final assessment
func (s *testServer) course(t *testing.T, answerKey *string) (*models.Course, []*models.Topic) {
	t.Helper()
	ctx := context.Background()

	course := &models.Course{
		Title:         "HTTP Course",
		Status:        models.CourseApproved,
		CreatedBy:     "instructor-1",
		QuizAnswerKey: answerKey,
	}
	require.NoError(t, s.repo.Course().Create(ctx, nil, course))

	var topics []*models.Topic
	for i, name := range []string{"T1", "T2", "T3", models.FinalAssessmentTopic} {
		topic := &models.Topic{Name: name}
		require.NoError(t, s.repo.Topic().Create(ctx, nil, topic))
		require.NoError(t, s.repo.Topic().MapToCourse(ctx, nil, &models.CourseTopic{
			CourseID:      course.ID,
			TopicID:       topic.ID,
			SequenceOrder: i + 1,
		}))
		topics = append(topics, topic)
	}
	return course, topics
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
