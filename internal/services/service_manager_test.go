package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sm := NewServiceManager(f.db, f.repo, f.logger, f.validator, nil, DefaultServiceManagerConfig())

	func() {
		defer func() {
			if recover() == nil {
				t.Error("getter before Initialize did not panic")
			}
		}()
		sm.Progress()
	}()

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize succeeded")
	}

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	course := f.course(t, "Managed", nil)
	if _, err := sm.Enrollment().Enroll(ctx, f.student, &EnrollRequest{StudentID: f.student.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown succeeded")
	}

	// The enroll trigger has finished by the time Shutdown returns
	stats, err := f.repo.Statistics().GetCourse(ctx, f.db, course.ID)
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if stats.TotalEnrollments != 1 {
		t.Errorf("TotalEnrollments = %d, want 1", stats.TotalEnrollments)
	}
}

// closeCounter records Close calls on an otherwise mocked publisher
type closeCounter struct {
	*events.MockEventPublisher
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func TestServiceManager_ShutdownLeavesPublisherOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	publisher := &closeCounter{MockEventPublisher: events.NewMockEventPublisher(f.logger)}
	sm := NewServiceManager(f.db, f.repo, f.logger, f.validator, publisher, DefaultServiceManagerConfig())

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if publisher.closes != 0 {
		t.Errorf("publisher closed %d times by Shutdown, want 0", publisher.closes)
	}
	if err := publisher.Publish(ctx, events.NewEvent(events.EnrollmentCreated, nil)); err != nil {
		t.Errorf("Publish() after Shutdown error = %v", err)
	}
}

func TestFixtureUsers_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, total, err := f.repo.User().List(ctx, repositories.UserFilters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != int64(len(f.users.users)) || len(all) != len(f.users.users) {
		t.Errorf("List() = %d users (total %d), want %d", len(all), total, len(f.users.users))
	}

	role := models.RoleInstructor
	instructors, _, err := f.repo.User().List(ctx, repositories.UserFilters{Role: &role})
	if err != nil {
		t.Fatalf("List(instructor) error = %v", err)
	}
	if len(instructors) != 1 || instructors[0].ID != f.instructor.ID {
		t.Errorf("List(instructor) = %+v, want only %s", instructors, f.instructor.ID)
	}
}
