package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCourseCache drops the cached course row and any listing built from it
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID))
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("course:%d", courseID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
}

// InvalidateStatsCache drops cached statistics for the given course and student
func InvalidateStatsCache(ctx context.Context, cm *CacheManager, courseID uint, studentID string) {
	keys := []string{"overview"}
	if courseID != 0 {
		keys = append(keys, CourseStatsKey(courseID))
	}
	if studentID != "" {
		keys = append(keys, StudentStatsKey(studentID))
	}
	SafeDelete(ctx, cm.Stats, keys...)
}

func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

func CourseStatsKey(courseID uint) string {
	return fmt.Sprintf("course:%d", courseID)
}

func StudentStatsKey(studentID string) string {
	return fmt.Sprintf("student:%s", studentID)
}

func InstructorStatsKey(instructorID string) string {
	return fmt.Sprintf("instructor:%s", instructorID)
}
