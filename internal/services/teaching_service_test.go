package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func TestTeachingService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Taught", nil)
	svc := NewTeachingService(f.repo, f.db, f.logger, f.validator, f.stats)
	second := f.users.add(&models.User{ID: "instructor-2", Role: models.RoleInstructor})

	if _, err := svc.Assign(ctx, f.admin, course.ID, &AssignInstructorRequest{InstructorID: second.ID}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	tests := []struct {
		name  string
		actor *models.User
		id    string
		want  error
	}{
		{"duplicate", f.admin, second.ID, ErrInstructorAlreadyAssigned},
		{"student target", f.admin, f.student.ID, ErrNotAnInstructor},
		{"unknown user", f.admin, "ghost", ErrUserNotFound},
		{"not admin", f.instructor, second.ID, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, tt.actor, course.ID, &AssignInstructorRequest{InstructorID: tt.id})
			if !errors.Is(err, tt.want) {
				t.Errorf("Assign() error = %v, want %v", err, tt.want)
			}
		})
	}

	teachings, err := svc.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(teachings) != 1 || teachings[0].InstructorID != second.ID {
		t.Errorf("teachings = %+v", teachings)
	}

	// An assigned instructor counts as course staff
	content := NewContentService(f.repo, f.db, f.logger, f.validator)
	item, err := content.Create(ctx, second, course.ID, &CreateContentRequest{Title: "Slides", ContentType: models.ContentDocument, URL: "https://example.com/slides.pdf"})
	if err != nil {
		t.Fatalf("content Create() error = %v", err)
	}

	if err := svc.Remove(ctx, f.admin, course.ID, second.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := svc.Remove(ctx, f.admin, course.ID, second.ID); !errors.Is(err, ErrTeachingNotFound) {
		t.Errorf("second Remove() error = %v", err)
	}
	if f.stats.count() != 2 {
		t.Errorf("stats triggers = %d, want 2", f.stats.count())
	}

	if err := content.Delete(ctx, second, item.ID); err != nil {
		t.Errorf("uploader Delete() error = %v", err)
	}
}

func TestContentService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course, topics := f.walkCourse(t, nil)
	loose := f.topic(t, 0, "Loose", 0)
	svc := NewContentService(f.repo, f.db, f.logger, f.validator)

	req := func(topicID *uint) *CreateContentRequest {
		return &CreateContentRequest{TopicID: topicID, Title: "Intro", ContentType: models.ContentVideo, URL: "https://example.com/v"}
	}

	item, err := svc.Create(ctx, f.instructor, course.ID, req(&topics[0].ID))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Create(ctx, f.instructor, course.ID, req(&loose.ID)); !errors.Is(err, ErrTopicNotMapped) {
		t.Errorf("Create(unmapped topic) error = %v", err)
	}
	if _, err := svc.Create(ctx, f.student, course.ID, req(nil)); !IsPermissionDenied(err) {
		t.Errorf("student Create() error = %v", err)
	}
	bad := req(nil)
	bad.ContentType = "podcast"
	if _, err := svc.Create(ctx, f.instructor, course.ID, bad); !IsInvalidInput(err) {
		t.Errorf("Create(podcast) error = %v", err)
	}

	items, err := svc.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}

	other := f.users.add(&models.User{ID: "instructor-3", Role: models.RoleInstructor})
	if err := svc.Delete(ctx, other, item.ID); !IsPermissionDenied(err) {
		t.Errorf("other instructor Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, f.admin, item.ID); err != nil {
		t.Errorf("admin Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, f.admin, item.ID); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}
