package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(course).Error; err != nil {
		return translateError(err, "create course")
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, translateError(err, fmt.Sprintf("get course %d", id))
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).Omit(clause.Associations).Save(course)
	if result.Error != nil {
		return translateError(result.Error, "update course")
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete course")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete course %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.UniversityID != nil {
		query = query.Where("university_id = ?", *filters.UniversityID)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []*models.Course
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.CourseStatus, reviewerID string, note *string) error {
	db := c.getDB(tx)
	now := time.Now()
	result := db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"review_note": note,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return translateError(result.Error, "update course status")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update course %d status: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

func (c *CoursePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := c.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	db := c.getDB(tx)
	var ids []uint
	if err := db.WithContext(ctx).Model(&models.Course{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list course ids: %w", err)
	}
	return ids, nil
}
