package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

func TestStatisticsService_TriggerRecompute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Counted", nil)
	f.enroll(t, f.student.ID, course.ID)
	f.enroll(t, f.other.ID, course.ID)

	svc := NewStatisticsService(f.repo, f.db, f.logger, time.Second)
	assessment := NewAssessmentService(f.repo, f.db, f.logger, svc, f.publisher)
	if _, err := assessment.Submit(ctx, f.student, f.student.ID, course.ID, &SubmitAssessmentRequest{Score: intPtr(80)}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	svc.Wait()

	stats, err := f.repo.Statistics().GetCourse(ctx, f.db, course.ID)
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if stats.TotalEnrollments != 2 || stats.CompletedEnrollments != 1 {
		t.Errorf("course stats = %+v", stats)
	}
	if stats.CompletionRate != 50 {
		t.Errorf("CompletionRate = %v, want 50", stats.CompletionRate)
	}

	student, err := svc.GetStudent(ctx, f.student, f.student.ID)
	if err != nil {
		t.Fatalf("GetStudent() error = %v", err)
	}
	if student.CompletedCourses != 1 {
		t.Errorf("CompletedCourses = %d, want 1", student.CompletedCourses)
	}
}

func TestStatisticsService_TriggerForUnknownCourse(t *testing.T) {
	f := newFixture(t)
	svc := NewStatisticsService(f.repo, f.db, f.logger, time.Second)

	svc.TriggerRecompute(RecomputeRequest{CourseID: 9999})
	svc.Wait()
}

func TestStatisticsService_RecomputeAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.course(t, "First", nil)
	second := f.course(t, "Second", nil)
	f.enroll(t, f.student.ID, first.ID)
	f.enroll(t, f.student.ID, second.ID)
	f.enroll(t, f.other.ID, second.ID)
	if err := f.repo.Teaching().Assign(ctx, nil, &models.Teaching{InstructorID: f.instructor.ID, CourseID: second.ID, AssignedBy: f.admin.ID, AssignedAt: time.Now()}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	svc := NewStatisticsService(f.repo, f.db, f.logger, time.Second)
	summary, err := svc.RecomputeAll(ctx)
	if err != nil {
		t.Fatalf("RecomputeAll() error = %v", err)
	}
	if summary.Courses != 2 || summary.Students != 2 || summary.Instructors != 1 || summary.Failures != 0 {
		t.Errorf("summary = %+v", summary)
	}

	taught, err := svc.GetInstructor(ctx, f.instructor, f.instructor.ID)
	if err != nil {
		t.Fatalf("GetInstructor() error = %v", err)
	}
	if taught.CoursesTaught != 1 || taught.TotalStudents != 2 {
		t.Errorf("instructor stats = %+v", taught)
	}

	if _, err := svc.GetStudent(ctx, f.other, f.student.ID); !IsPermissionDenied(err) {
		t.Errorf("GetStudent(other) error = %v", err)
	}
	if _, err := svc.GetStudent(ctx, f.analyst, f.student.ID); err != nil {
		t.Errorf("analyst GetStudent() error = %v", err)
	}
}

func TestStatisticsService_GetCourseComputesOnMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Fresh", nil)
	f.enroll(t, f.student.ID, course.ID)
	svc := NewStatisticsService(f.repo, f.db, f.logger, time.Second)

	stats, err := svc.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if stats.TotalEnrollments != 1 {
		t.Errorf("TotalEnrollments = %d, want 1", stats.TotalEnrollments)
	}

	if _, err := svc.GetCourse(ctx, 9999); !IsNotFound(err) {
		t.Errorf("GetCourse(missing) error = %v", err)
	}
}

func TestAnalyticsService_ExportWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Exported", nil)
	f.enroll(t, f.student.ID, course.ID)
	if _, err := NewStatisticsService(f.repo, f.db, f.logger, time.Second).RecomputeAll(ctx); err != nil {
		t.Fatalf("RecomputeAll() error = %v", err)
	}
	svc := NewAnalyticsService(f.repo, f.db, f.logger)

	overview, err := svc.Overview(ctx, 0)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if overview.Platform.TotalEnrollments != 1 || len(overview.TopCourses) != 1 {
		t.Errorf("overview = %+v", overview)
	}

	buf := &bytes.Buffer{}
	if err := svc.ExportWorkbook(ctx, buf); err != nil {
		t.Fatalf("ExportWorkbook() error = %v", err)
	}

	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Courses" || sheets[1] != "Instructors" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := wb.GetRows("Courses")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "Exported" {
		t.Errorf("course rows = %v", rows)
	}
}

func TestAuditService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuditService(f.repo, f.db, f.logger)

	if err := svc.Record(ctx, &models.AdminAuditLog{Action: "GET /admin/audit"}); !IsInvalidInput(err) {
		t.Errorf("Record(no admin) error = %v", err)
	}
	for _, admin := range []*models.User{f.admin, f.senior} {
		entry := &models.AdminAuditLog{AdminUserID: admin.ID, AdminLevel: admin.AdminLevel, Action: "POST /admin/statistics/recompute", Method: "POST", StatusCode: 200}
		if err := svc.Record(ctx, entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	list, err := svc.List(ctx, repositories.AuditFilters{AdminUserID: &f.senior.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Total != 1 || list.Entries[0].AdminUserID != f.senior.ID {
		t.Errorf("List() = %+v", list)
	}
}
