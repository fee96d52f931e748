package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

const healthCheckTimeout = 3 * time.Second

type HandlerManager struct {
	enrollmentHandler *EnrollmentHandler
	courseHandler     *CourseHandler
	quizHandler       *QuizHandler
	staffHandler      *StaffHandler
	universityHandler *UniversityHandler
	adminHandler      *AdminHandler
	statisticsHandler *StatisticsHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	userRepo repositories.UserRepository,
	authMiddleware *CasdoorAuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Progress(), serviceManager.Assessment(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), logger),
		staffHandler:      NewStaffHandler(serviceManager.Teaching(), serviceManager.Content(), logger),
		universityHandler: NewUniversityHandler(serviceManager.University(), logger),
		adminHandler:      NewAdminHandler(serviceManager.Moderation(), serviceManager.Statistics(), serviceManager.Audit(), logger),
		statisticsHandler: NewStatisticsHandler(serviceManager.Statistics(), serviceManager.Analytics(), logger),
		userHandler:       NewUserHandler(userRepo, logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor)
	analystOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAnalyst)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Enrollment, progress and assessment; self-or-admin is enforced by the services
		enrollments := v1.Group("/enrollments")
		{
			enrollments.POST("", hm.enrollmentHandler.Enroll)
			enrollments.GET("/student/:student_id", hm.enrollmentHandler.ListStudentEnrollments)
			enrollments.GET("/course/:course_id", hm.enrollmentHandler.ListCourseEnrollments)
			enrollments.GET("/:student_id/:course_id", hm.enrollmentHandler.GetEnrollment)

			enrollments.PUT("/progress/:student_id/:course_id/:topic_id", hm.enrollmentHandler.AdvanceProgress)
			enrollments.PUT("/rollback/:student_id/:course_id/:topic_id", hm.enrollmentHandler.RollbackProgress)
			enrollments.PUT("/reset/:student_id/:course_id", hm.enrollmentHandler.ResetProgress)
			enrollments.POST("/assessment/:student_id/:course_id", hm.enrollmentHandler.SubmitAssessment)

			enrollments.PUT("/completion/:student_id/:course_id", hm.enrollmentHandler.UpdateCompletion)
			enrollments.PUT("/rating/:student_id/:course_id", hm.enrollmentHandler.RateCourse)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/topics", hm.courseHandler.GetCourseTopics)
			courses.GET("/:id/quiz", hm.quizHandler.GetQuiz)
			courses.GET("/:id/instructors", hm.staffHandler.ListInstructors)
			courses.GET("/:id/content", hm.staffHandler.ListContent)

			// Authoring - Instructors and Admins only
			courses.POST("", staffOnly, hm.courseHandler.CreateCourse)
			courses.PUT("/:id", staffOnly, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", staffOnly, hm.courseHandler.DeleteCourse)
			courses.PUT("/:id/answer-key", staffOnly, hm.courseHandler.SetAnswerKey)
			courses.POST("/:id/topics", staffOnly, hm.courseHandler.MapTopic)
			courses.DELETE("/:id/topics/:topic_id", staffOnly, hm.courseHandler.UnmapTopic)
			courses.PUT("/:id/quiz", staffOnly, hm.quizHandler.ReplaceQuiz)
			courses.POST("/:id/quiz/import", staffOnly, hm.quizHandler.ImportQuiz)
			courses.POST("/:id/content", staffOnly, hm.staffHandler.CreateContent)
		}

		v1.DELETE("/content/:content_id", staffOnly, hm.staffHandler.DeleteContent)

		topics := v1.Group("/topics")
		{
			topics.GET("", hm.courseHandler.ListTopics)
			topics.POST("", staffOnly, hm.courseHandler.CreateTopic)
		}

		universities := v1.Group("/universities")
		{
			universities.GET("", hm.universityHandler.ListUniversities)
			universities.GET("/:id", hm.universityHandler.GetUniversity)
		}

		statistics := v1.Group("/statistics")
		{
			statistics.GET("/courses/:id", staffOnly, hm.statisticsHandler.GetCourseStatistics)
			statistics.GET("/students/:student_id", hm.statisticsHandler.GetStudentStatistics)
			statistics.GET("/instructors/:instructor_id", hm.statisticsHandler.GetInstructorStatistics)
		}

		analytics := v1.Group("/analytics")
		analytics.Use(analystOnly)
		{
			analytics.GET("/overview", hm.statisticsHandler.Overview)
			analytics.GET("/export", hm.statisticsHandler.Export)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.Me)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}

		// Admin routes; every call is written to the audit trail
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		admin.Use(AdminAuditMiddleware(hm.serviceManager.Audit(), hm.logger))
		{
			admin.POST("/courses/:id/approve", hm.courseHandler.ApproveCourse)
			admin.POST("/courses/:id/reject", hm.courseHandler.RejectCourse)
			admin.POST("/courses/:id/instructors", hm.staffHandler.AssignInstructor)
			admin.DELETE("/courses/:id/instructors/:instructor_id", hm.staffHandler.RemoveInstructor)

			admin.POST("/universities", hm.universityHandler.CreateUniversity)
			admin.PUT("/universities/:id", hm.universityHandler.UpdateUniversity)
			admin.DELETE("/universities/:id", hm.universityHandler.DeleteUniversity)

			admin.POST("/statistics/recompute", hm.adminHandler.RecomputeStatistics)
			admin.GET("/audit", hm.adminHandler.ListAudit)

			moderation := admin.Group("/moderation")
			moderation.Use(hm.authMiddleware.RequireSeniorAdminMiddleware())
			{
				moderation.DELETE("/reviews/:student_id/:course_id", hm.adminHandler.DeleteReview)
				moderation.PUT("/ratings/:student_id/:course_id", hm.adminHandler.OverrideRating)
				moderation.PUT("/completion/:student_id/:course_id", hm.adminHandler.ForceCompletion)
			}
		}
	}

	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "course-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "course-service",
	})
}
