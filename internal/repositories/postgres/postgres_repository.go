package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	course     repositories.CourseRepository
	topic      repositories.TopicRepository
	university repositories.UniversityRepository
	quiz       repositories.QuizRepository
	content    repositories.ContentRepository
	enrollment repositories.EnrollmentRepository
	teaching   repositories.TeachingRepository
	statistics repositories.StatisticsRepository
	audit      repositories.AuditRepository
	user       repositories.UserRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig

	// UserRepository overrides the Casdoor-backed user store when set
	UserRepository repositories.UserRepository
}

// NewPostgreSQLRepository creates a repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}
	repo.bind(config.DB)

	if config.UserRepository != nil {
		repo.user = config.UserRepository
	} else {
		repo.user = casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient)
	}

	return repo
}

// bind builds every gorm-backed sub-repository on db
func (r *PostgreSQLRepository) bind(db *gorm.DB) {
	r.course = NewCoursePostgreSQL(db, r.redisClient)
	r.topic = NewTopicPostgreSQL(db)
	r.university = NewUniversityPostgreSQL(db)
	r.quiz = NewQuizPostgreSQL(db)
	r.content = NewContentPostgreSQL(db)
	r.enrollment = NewEnrollmentPostgreSQL(db)
	r.teaching = NewTeachingPostgreSQL(db)
	r.statistics = NewStatisticsRepository(db, r.redisClient)
	r.audit = NewAuditPostgreSQL(db)
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository { return r.course }

func (r *PostgreSQLRepository) Topic() repositories.TopicRepository { return r.topic }

func (r *PostgreSQLRepository) University() repositories.UniversityRepository { return r.university }

func (r *PostgreSQLRepository) Quiz() repositories.QuizRepository { return r.quiz }

func (r *PostgreSQLRepository) Content() repositories.ContentRepository { return r.content }

func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }

func (r *PostgreSQLRepository) Teaching() repositories.TeachingRepository { return r.teaching }

func (r *PostgreSQLRepository) Statistics() repositories.StatisticsRepository { return r.statistics }

func (r *PostgreSQLRepository) Audit() repositories.AuditRepository { return r.audit }

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

// WithTransaction executes fn with a repository bound to one database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
			// User repository is external and does not join the transaction
			user: r.user,
		}
		txRepo.bind(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connectivity and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
