package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/repositories"
)

const (
	defaultTopCourses = 10
	courseSheet       = "Courses"
	instructorSheet   = "Instructors"
)

type analyticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Overview reads the stored statistics; it does not recompute them
func (s *analyticsService) Overview(ctx context.Context, topN int) (*AnalyticsOverview, error) {
	if topN <= 0 {
		topN = defaultTopCourses
	}

	platform, err := s.repo.Statistics().Overview(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform overview: %w", err)
	}

	courses, err := s.repo.Statistics().ListCourseStatistics(ctx, s.db, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to get top courses: %w", err)
	}

	instructors, err := s.repo.Statistics().ListInstructorStatistics(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor statistics: %w", err)
	}

	return &AnalyticsOverview{
		Platform:    platform,
		TopCourses:  courses,
		Instructors: instructors,
		GeneratedAt: time.Now(),
	}, nil
}

// ExportWorkbook writes an xlsx file with one sheet of course statistics and
// one of instructor statistics
func (s *analyticsService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	courses, err := s.repo.Statistics().ListCourseStatistics(ctx, s.db, 0)
	if err != nil {
		return fmt.Errorf("failed to get course statistics: %w", err)
	}
	instructors, err := s.repo.Statistics().ListInstructorStatistics(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to get instructor statistics: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", courseSheet); err != nil {
		return fmt.Errorf("failed to name course sheet: %w", err)
	}
	courseRows := [][]interface{}{{"Course ID", "Title", "Total", "Active", "Completed", "Completion Rate (%)", "Average Rating", "Ratings"}}
	for _, c := range courses {
		var avg interface{}
		if c.AverageRating != nil {
			avg = *c.AverageRating
		}
		courseRows = append(courseRows, []interface{}{
			c.CourseID, c.Title, c.TotalEnrollments, c.ActiveEnrollments,
			c.CompletedEnrollments, c.CompletionRate, avg, c.RatingsCount,
		})
	}
	if err := writeRows(f, courseSheet, courseRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(instructorSheet); err != nil {
		return fmt.Errorf("failed to add instructor sheet: %w", err)
	}
	instructorRows := [][]interface{}{{"Instructor ID", "Courses Taught", "Total Students", "Updated At"}}
	for _, i := range instructors {
		instructorRows = append(instructorRows, []interface{}{
			i.InstructorID, i.CoursesTaught, i.TotalStudents, i.UpdatedAt.Format(time.RFC3339),
		})
	}
	if err := writeRows(f, instructorSheet, instructorRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Analytics workbook exported", "courses", len(courses), "instructors", len(instructors))
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		r := row
		if err := f.SetSheetRow(sheet, addr, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
