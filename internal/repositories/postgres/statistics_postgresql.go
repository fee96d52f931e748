package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type statisticsRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewStatisticsRepository(db *gorm.DB, redisClient *redis.Client) repositories.StatisticsRepository {
	return &statisticsRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *statisticsRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== COMPUTATION =====

func (r *statisticsRepository) countEnrollments(ctx context.Context, db *gorm.DB, where string, args ...interface{}) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where(where, args...).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *statisticsRepository) ComputeCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CourseStatistics, error) {
	db := r.getDB(tx)
	stats := &models.CourseStatistics{CourseID: courseID}
	var err error

	if stats.TotalEnrollments, err = r.countEnrollments(ctx, db, "course_id = ?", courseID); err != nil {
		return nil, fmt.Errorf("failed to count course enrollments: %w", err)
	}
	if stats.CompletedEnrollments, err = r.countEnrollments(ctx, db, "course_id = ? AND completion_status = ?", courseID, models.CompletionCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed enrollments: %w", err)
	}
	if stats.ActiveEnrollments, err = r.countEnrollments(ctx, db, "course_id = ? AND completion_status = ?", courseID, models.CompletionInProgress); err != nil {
		return nil, fmt.Errorf("failed to count active enrollments: %w", err)
	}

	if stats.TotalEnrollments > 0 {
		stats.CompletionRate = roundTo(float64(stats.CompletedEnrollments)/float64(stats.TotalEnrollments)*100, 2)
	}

	var rating struct {
		Average *float64
		Count   int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("AVG(rating) AS average, COUNT(rating) AS count").
		Where("course_id = ? AND rating IS NOT NULL", courseID).
		Scan(&rating).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate course ratings: %w", err)
	}
	stats.RatingsCount = rating.Count
	if rating.Average != nil && rating.Count > 0 {
		avg := roundTo(*rating.Average, 2)
		stats.AverageRating = &avg
	}

	return stats, nil
}

func (r *statisticsRepository) ComputeStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentStatistics, error) {
	db := r.getDB(tx)
	stats := &models.StudentStatistics{StudentID: studentID}
	var err error

	if stats.TotalCourses, err = r.countEnrollments(ctx, db, "student_id = ?", studentID); err != nil {
		return nil, fmt.Errorf("failed to count student enrollments: %w", err)
	}
	if stats.CompletedCourses, err = r.countEnrollments(ctx, db, "student_id = ? AND completion_status = ?", studentID, models.CompletionCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed courses: %w", err)
	}
	if stats.ActiveCourses, err = r.countEnrollments(ctx, db, "student_id = ? AND completion_status = ?", studentID, models.CompletionInProgress); err != nil {
		return nil, fmt.Errorf("failed to count active courses: %w", err)
	}

	return stats, nil
}

func (r *statisticsRepository) ComputeInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (*models.InstructorStatistics, error) {
	db := r.getDB(tx)
	stats := &models.InstructorStatistics{InstructorID: instructorID}

	if err := db.WithContext(ctx).
		Model(&models.Teaching{}).
		Where("instructor_id = ?", instructorID).
		Count(&stats.CoursesTaught).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses taught: %w", err)
	}

	if err := db.WithContext(ctx).
		Table("enrollments").
		Joins("JOIN teachings ON teachings.course_id = enrollments.course_id").
		Where("teachings.instructor_id = ?", instructorID).
		Distinct("enrollments.student_id").
		Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor students: %w", err)
	}

	return stats, nil
}

// ===== PERSISTENCE =====

func (r *statisticsRepository) UpsertCourse(ctx context.Context, tx *gorm.DB, stats *models.CourseStatistics) error {
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(stats).Error; err != nil {
		return fmt.Errorf("failed to upsert course statistics: %w", err)
	}
	cache.SafeDelete(ctx, r.cacheManager.Stats, cache.CourseStatsKey(stats.CourseID), "overview")
	return nil
}

func (r *statisticsRepository) UpsertStudent(ctx context.Context, tx *gorm.DB, stats *models.StudentStatistics) error {
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(stats).Error; err != nil {
		return fmt.Errorf("failed to upsert student statistics: %w", err)
	}
	cache.SafeDelete(ctx, r.cacheManager.Stats, cache.StudentStatsKey(stats.StudentID))
	return nil
}

func (r *statisticsRepository) UpsertInstructor(ctx context.Context, tx *gorm.DB, stats *models.InstructorStatistics) error {
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(stats).Error; err != nil {
		return fmt.Errorf("failed to upsert instructor statistics: %w", err)
	}
	cache.SafeDelete(ctx, r.cacheManager.Stats, cache.InstructorStatsKey(stats.InstructorID))
	return nil
}

// ===== READS =====

func (r *statisticsRepository) GetCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CourseStatistics, error) {
	db := r.getDB(tx)
	var stats models.CourseStatistics
	err := r.cacheManager.Stats.CacheOrExecute(ctx, cache.CourseStatsKey(courseID), &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row models.CourseStatistics
		if err := db.WithContext(ctx).First(&row, "course_id = ?", courseID).Error; err != nil {
			return nil, translateError(err, "get course statistics")
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statisticsRepository) GetStudent(ctx context.Context, tx *gorm.DB, studentID string) (*models.StudentStatistics, error) {
	db := r.getDB(tx)
	var stats models.StudentStatistics
	err := r.cacheManager.Stats.CacheOrExecute(ctx, cache.StudentStatsKey(studentID), &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row models.StudentStatistics
		if err := db.WithContext(ctx).First(&row, "student_id = ?", studentID).Error; err != nil {
			return nil, translateError(err, "get student statistics")
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statisticsRepository) GetInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (*models.InstructorStatistics, error) {
	db := r.getDB(tx)
	var stats models.InstructorStatistics
	err := r.cacheManager.Stats.CacheOrExecute(ctx, cache.InstructorStatsKey(instructorID), &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row models.InstructorStatistics
		if err := db.WithContext(ctx).First(&row, "instructor_id = ?", instructorID).Error; err != nil {
			return nil, translateError(err, "get instructor statistics")
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statisticsRepository) ListCourseStatistics(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.CourseStatisticsRow, error) {
	db := r.getDB(tx)
	var rows []repositories.CourseStatisticsRow

	query := db.WithContext(ctx).
		Table("course_statistics").
		Select("course_statistics.*, courses.title AS title").
		Joins("JOIN courses ON courses.id = course_statistics.course_id AND courses.deleted_at IS NULL").
		Order("course_statistics.completion_rate DESC, course_statistics.total_enrollments DESC, course_statistics.course_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list course statistics: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) ListInstructorStatistics(ctx context.Context, tx *gorm.DB) ([]*models.InstructorStatistics, error) {
	var rows []*models.InstructorStatistics
	if err := r.getDB(tx).WithContext(ctx).
		Order("total_students DESC, instructor_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list instructor statistics: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) Overview(ctx context.Context, tx *gorm.DB) (*repositories.PlatformOverview, error) {
	db := r.getDB(tx)
	var overview repositories.PlatformOverview

	err := r.cacheManager.Stats.CacheOrExecute(ctx, "overview", &overview, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return r.computeOverview(ctx, db)
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

func (r *statisticsRepository) computeOverview(ctx context.Context, db *gorm.DB) (*repositories.PlatformOverview, error) {
	o := &repositories.PlatformOverview{}

	if err := db.WithContext(ctx).Model(&models.Course{}).Count(&o.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to get total courses: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Course{}).Where("status = ?", models.CourseApproved).Count(&o.ApprovedCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to get approved courses: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Course{}).Where("status = ?", models.CoursePending).Count(&o.PendingCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to get pending courses: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.University{}).Count(&o.TotalUniversities).Error; err != nil {
		return nil, fmt.Errorf("failed to get total universities: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).Count(&o.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to get total enrollments: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).Where("completion_status = ?", models.CompletionCompleted).Count(&o.CompletedEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to get completed enrollments: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).Distinct("student_id").Count(&o.DistinctStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to get distinct students: %w", err)
	}

	var avg *float64
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("AVG(rating)").
		Where("rating IS NOT NULL").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to get average rating: %w", err)
	}
	if avg != nil {
		o.AverageRating = roundTo(*avg, 2)
	}

	if o.TotalEnrollments > 0 {
		o.CompletionRate = roundTo(float64(o.CompletedEnrollments)/float64(o.TotalEnrollments)*100, 2)
	}

	return o, nil
}
