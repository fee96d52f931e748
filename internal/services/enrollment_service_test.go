package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

func newEnrollments(f *fixture) EnrollmentService {
	return NewEnrollmentService(f.repo, f.db, f.logger, f.validator, f.stats, f.publisher)
}

func TestEnrollmentService_Enroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Open Course", nil)
	pending := &models.Course{Title: "Pending Course", Status: models.CoursePending, CreatedBy: f.instructor.ID}
	if err := f.repo.Course().Create(ctx, nil, pending); err != nil {
		t.Fatalf("seed pending course: %v", err)
	}
	svc := newEnrollments(f)

	enrollment, err := svc.Enroll(ctx, f.student, &EnrollRequest{StudentID: f.student.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enrollment.CompletionStatus != models.CompletionInProgress || enrollment.CurrentTopicID != nil {
		t.Errorf("new enrollment = %+v", enrollment)
	}
	if f.stats.count() != 1 {
		t.Errorf("stats triggers = %d, want 1", f.stats.count())
	}

	tests := []struct {
		name  string
		actor *models.User
		req   *EnrollRequest
		check func(error) bool
	}{
		{"duplicate", f.student, &EnrollRequest{StudentID: f.student.ID, CourseID: course.ID}, IsConflict},
		{"pending course", f.student, &EnrollRequest{StudentID: f.student.ID, CourseID: pending.ID}, IsInvalidInput},
		{"missing course", f.student, &EnrollRequest{StudentID: f.student.ID, CourseID: 9999}, IsNotFound},
		{"not a student", f.admin, &EnrollRequest{StudentID: f.instructor.ID, CourseID: course.ID}, IsInvalidInput},
		{"unknown student", f.admin, &EnrollRequest{StudentID: "ghost", CourseID: course.ID}, IsNotFound},
		{"someone else", f.other, &EnrollRequest{StudentID: f.student.ID, CourseID: course.ID}, IsPermissionDenied},
		{"missing fields", f.student, &EnrollRequest{}, IsInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enroll(ctx, tt.actor, tt.req)
			if err == nil || !tt.check(err) {
				t.Errorf("Enroll() error = %v", err)
			}
		})
	}
}

func TestEnrollmentService_AdminEnrollsStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Open Course", nil)
	svc := newEnrollments(f)

	if _, err := svc.Enroll(ctx, f.admin, &EnrollRequest{StudentID: f.other.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	list, err := svc.ListByStudent(ctx, f.other, f.other.ID, repositories.EnrollmentFilters{Limit: 10})
	if err != nil {
		t.Fatalf("ListByStudent() error = %v", err)
	}
	if list.Total != 1 || len(list.Enrollments) != 1 {
		t.Errorf("ListByStudent() total = %d", list.Total)
	}
}

func TestEnrollmentService_ListByCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Listed Course", nil)
	f.enroll(t, f.student.ID, course.ID)
	f.enroll(t, f.other.ID, course.ID)
	svc := newEnrollments(f)

	for _, actor := range []*models.User{f.instructor, f.admin, f.analyst} {
		list, err := svc.ListByCourse(ctx, actor, course.ID, repositories.EnrollmentFilters{Limit: 10})
		if err != nil {
			t.Fatalf("ListByCourse(%s) error = %v", actor.ID, err)
		}
		if list.Total != 2 {
			t.Errorf("ListByCourse(%s) total = %d, want 2", actor.ID, list.Total)
		}
	}

	if _, err := svc.ListByCourse(ctx, f.student, course.ID, repositories.EnrollmentFilters{}); !IsPermissionDenied(err) {
		t.Errorf("student ListByCourse() error = %v, want forbidden", err)
	}
}

func TestEnrollmentService_UpdateCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Completion Course", nil)
	f.enroll(t, f.student.ID, course.ID)
	svc := newEnrollments(f)

	got, err := svc.UpdateCompletion(ctx, f.student, f.student.ID, course.ID, &UpdateCompletionRequest{CompletionStatus: models.CompletionCompleted})
	if err != nil {
		t.Fatalf("UpdateCompletion() error = %v", err)
	}
	if !got.IsCompleted() || got.CompletionDate == nil {
		t.Errorf("completed enrollment = %+v", got)
	}

	got, err = svc.UpdateCompletion(ctx, f.student, f.student.ID, course.ID, &UpdateCompletionRequest{CompletionStatus: models.CompletionInProgress})
	if err != nil {
		t.Fatalf("UpdateCompletion() error = %v", err)
	}
	if got.CompletionDate != nil {
		t.Errorf("reopened enrollment kept date %v", got.CompletionDate)
	}

	_, err = svc.UpdateCompletion(ctx, f.student, f.student.ID, course.ID, &UpdateCompletionRequest{CompletionStatus: "Abandoned"})
	if !errors.Is(err, ErrInvalidCompletionStatus) {
		t.Errorf("UpdateCompletion(Abandoned) error = %v", err)
	}
}

func TestEnrollmentService_Rate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Rated Course", nil)
	f.enroll(t, f.student.ID, course.ID)
	svc := newEnrollments(f)

	got, err := svc.Rate(ctx, f.student, f.student.ID, course.ID, &RateCourseRequest{Rating: 4, IsReviewPublic: true})
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if got.Rating == nil || *got.Rating != 4 || got.RatedAt == nil {
		t.Errorf("rating not stored: %+v", got)
	}
	if got.IsReviewPublic {
		t.Error("review without text marked public")
	}

	got, err = svc.Rate(ctx, f.student, f.student.ID, course.ID, &RateCourseRequest{Rating: 5, ReviewText: strPtr("great"), IsReviewPublic: true})
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if !got.IsReviewPublic {
		t.Error("review with text not public")
	}

	if _, err := svc.Rate(ctx, f.student, f.student.ID, course.ID, &RateCourseRequest{Rating: 6}); !IsInvalidInput(err) {
		t.Errorf("Rate(6) error = %v, want invalid input", err)
	}
}

func TestModerationService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Moderated Course", nil)
	f.enroll(t, f.student.ID, course.ID)
	if _, err := newEnrollments(f).Rate(ctx, f.student, f.student.ID, course.ID, &RateCourseRequest{Rating: 1, ReviewText: strPtr("spam"), IsReviewPublic: true}); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	svc := NewModerationService(f.repo, f.db, f.logger, f.validator, f.stats, f.publisher)
	reason := &ModerationReasonRequest{Reason: strPtr("abuse")}

	if _, err := svc.DeleteReview(ctx, f.admin, f.student.ID, course.ID, reason); !IsPermissionDenied(err) {
		t.Errorf("junior DeleteReview() error = %v, want forbidden", err)
	}
	if _, err := svc.DeleteReview(ctx, f.student, f.student.ID, course.ID, reason); !IsPermissionDenied(err) {
		t.Errorf("student DeleteReview() error = %v, want forbidden", err)
	}

	got, err := svc.DeleteReview(ctx, f.senior, f.student.ID, course.ID, reason)
	if err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}
	if got.Rating != nil || got.ReviewText != nil || got.IsReviewPublic {
		t.Errorf("review survived deletion: %+v", got)
	}

	got, err = svc.OverrideRating(ctx, f.senior, f.student.ID, course.ID, &OverrideRatingRequest{Rating: 3})
	if err != nil {
		t.Fatalf("OverrideRating() error = %v", err)
	}
	if got.Rating == nil || *got.Rating != 3 {
		t.Errorf("rating = %v, want 3", got.Rating)
	}

	got, err = svc.ForceCompletion(ctx, f.senior, f.student.ID, course.ID, nil)
	if err != nil {
		t.Fatalf("ForceCompletion() error = %v", err)
	}
	if !got.IsCompleted() || got.CompletionDate == nil {
		t.Errorf("ForceCompletion() = %+v", got)
	}

	if _, err := svc.ForceCompletion(ctx, f.senior, f.other.ID, course.ID, nil); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("ForceCompletion(unenrolled) error = %v", err)
	}
}
