package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// RecomputeTimeout bounds each background statistics recompute
	RecomputeTimeout time.Duration
	// ShutdownTimeout bounds the wait for in-flight recomputes
	ShutdownTimeout time.Duration
}

// DefaultServiceManagerConfig returns the settings used in production
func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		RecomputeTimeout: DefaultRecomputeTimeout,
		ShutdownTimeout:  10 * time.Second,
	}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	progressService   ProgressService
	assessmentService AssessmentService
	enrollmentService EnrollmentService
	moderationService ModerationService
	courseService     CourseService
	universityService UniversityService
	quizService       QuizService
	teachingService   TeachingService
	contentService    ContentService
	statisticsService StatisticsService
	analyticsService  AnalyticsService
	auditService      AuditService
	catalogService    CatalogService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	if publisher == nil {
		publisher = events.NewLoggingEventPublisher(logger)
	}
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	// Statistics first: every write path triggers it
	sm.statisticsService = NewStatisticsService(sm.repo, sm.db, sm.logger, sm.config.RecomputeTimeout)
	stats := sm.statisticsService

	sm.progressService = NewProgressService(sm.repo, sm.db, sm.logger, stats, sm.publisher)
	sm.assessmentService = NewAssessmentService(sm.repo, sm.db, sm.logger, stats, sm.publisher)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.db, sm.logger, sm.validator, stats, sm.publisher)
	sm.moderationService = NewModerationService(sm.repo, sm.db, sm.logger, sm.validator, stats, sm.publisher)
	sm.teachingService = NewTeachingService(sm.repo, sm.db, sm.logger, sm.validator, stats)

	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.universityService = NewUniversityService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.quizService = NewQuizService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.contentService = NewContentService(sm.repo, sm.db, sm.logger, sm.validator)

	sm.analyticsService = NewAnalyticsService(sm.repo, sm.db, sm.logger)
	sm.auditService = NewAuditService(sm.repo, sm.db, sm.logger)
	sm.catalogService = NewCatalogService(sm.repo, sm.db, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Progress() ProgressService {
	return get(sm, sm.progressService, "progress")
}

func (sm *serviceManager) Assessment() AssessmentService {
	return get(sm, sm.assessmentService, "assessment")
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	return get(sm, sm.enrollmentService, "enrollment")
}

func (sm *serviceManager) Moderation() ModerationService {
	return get(sm, sm.moderationService, "moderation")
}

func (sm *serviceManager) Course() CourseService {
	return get(sm, sm.courseService, "course")
}

func (sm *serviceManager) University() UniversityService {
	return get(sm, sm.universityService, "university")
}

func (sm *serviceManager) Quiz() QuizService {
	return get(sm, sm.quizService, "quiz")
}

func (sm *serviceManager) Teaching() TeachingService {
	return get(sm, sm.teachingService, "teaching")
}

func (sm *serviceManager) Content() ContentService {
	return get(sm, sm.contentService, "content")
}

func (sm *serviceManager) Statistics() StatisticsService {
	return get(sm, sm.statisticsService, "statistics")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	return get(sm, sm.analyticsService, "analytics")
}

func (sm *serviceManager) Audit() AuditService {
	return get(sm, sm.auditService, "audit")
}

func (sm *serviceManager) Catalog() CatalogService {
	return get(sm, sm.catalogService, "catalog")
}

// get panics when the manager is used before Initialize
func get[T any](sm *serviceManager, svc T, name string) T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic(fmt.Sprintf("service manager not initialized: %s service requested", name))
	}
	return svc
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown drains background recomputes, then closes the publisher
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.statisticsService != nil {
		done := make(chan struct{})
		go func() {
			sm.statisticsService.Wait()
			close(done)
		}()

		timeout := sm.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		select {
		case <-done:
		case <-ctx.Done():
			sm.logger.Warn("Shutdown interrupted while waiting for statistics recomputes", "error", ctx.Err())
		case <-time.After(timeout):
			sm.logger.Warn("Timed out waiting for statistics recomputes", "timeout", timeout)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
