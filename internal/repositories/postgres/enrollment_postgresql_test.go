package postgres

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

func TestEnrollmentPostgreSQL_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewEnrollmentPostgreSQL(db)
	course := seedCourse(t, db, "Go Basics")
	topic := seedTopic(t, db, course.ID, "Syntax", 1)

	seedEnrollment(t, db, "s1", course.ID, models.CompletionInProgress, nil)

	tests := []struct {
		name      string
		studentID string
		courseID  uint
		wantErr   error
	}{
		{name: "existing", studentID: "s1", courseID: course.ID},
		{name: "unknown student", studentID: "s2", courseID: course.ID, wantErr: repositories.ErrNotFound},
		{name: "unknown course", studentID: "s1", courseID: 999, wantErr: repositories.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Get(ctx, nil, tt.studentID, tt.courseID)
			if tt.wantErr != nil {
				if !repositories.IsNotFoundError(err) {
					t.Fatalf("Get() error = %v, want not found", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.CompletionStatus != models.CompletionInProgress {
				t.Errorf("CompletionStatus = %v", got.CompletionStatus)
			}
		})
	}

	t.Run("update persists the topic pointer", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			e, err := repo.GetForUpdate(ctx, tx, "s1", course.ID)
			if err != nil {
				return err
			}
			e.CurrentTopicID = &topic.ID
			return repo.Update(ctx, tx, e)
		})
		if err != nil {
			t.Fatalf("update in tx: %v", err)
		}

		got, err := repo.Get(ctx, nil, "s1", course.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.CurrentTopicID == nil || *got.CurrentTopicID != topic.ID {
			t.Errorf("CurrentTopicID = %v, want %d", got.CurrentTopicID, topic.ID)
		}
		if got.CurrentTopic == nil || got.CurrentTopic.Name != "Syntax" {
			t.Errorf("CurrentTopic not preloaded: %+v", got.CurrentTopic)
		}
	})
}

func TestEnrollmentPostgreSQL_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "Go Basics")
	seedEnrollment(t, db, "s1", course.ID, models.CompletionInProgress, nil)

	err := NewEnrollmentPostgreSQL(db).Create(context.Background(), nil, &models.Enrollment{
		StudentID:        "s1",
		CourseID:         course.ID,
		EnrollmentDate:   models.Today(),
		Status:           models.EnrollmentActive,
		CompletionStatus: models.CompletionInProgress,
	})
	if !repositories.IsDuplicateError(err) {
		t.Fatalf("Create() error = %v, want duplicate", err)
	}
}

func TestEnrollmentPostgreSQL_ListByStudent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewEnrollmentPostgreSQL(db)

	c1 := seedCourse(t, db, "Course A")
	c2 := seedCourse(t, db, "Course B")
	c3 := seedCourse(t, db, "Course C")
	seedEnrollment(t, db, "s1", c1.ID, models.CompletionInProgress, nil)
	seedEnrollment(t, db, "s1", c2.ID, models.CompletionCompleted, nil)
	seedEnrollment(t, db, "s2", c3.ID, models.CompletionInProgress, nil)

	completed := models.CompletionCompleted
	tests := []struct {
		name      string
		filters   repositories.EnrollmentFilters
		wantTotal int64
	}{
		{name: "all", wantTotal: 2},
		{name: "completed only", filters: repositories.EnrollmentFilters{CompletionStatus: &completed}, wantTotal: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.ListByStudent(ctx, nil, "s1", tt.filters)
			if err != nil {
				t.Fatalf("ListByStudent() error = %v", err)
			}
			if total != tt.wantTotal || int64(len(got)) != tt.wantTotal {
				t.Errorf("total = %d, len = %d, want %d", total, len(got), tt.wantTotal)
			}
			for _, e := range got {
				if e.Course == nil {
					t.Errorf("course not preloaded for %d", e.CourseID)
				}
			}
		})
	}

	ids, err := repo.ListStudentIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListStudentIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("ListStudentIDs() = %v", ids)
	}
}

func TestEnrollmentPostgreSQL_RepointCurrentTopic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewEnrollmentPostgreSQL(db)
	course := seedCourse(t, db, "Go Basics")
	first := seedTopic(t, db, course.ID, "Syntax", 1)
	second := seedTopic(t, db, course.ID, "Types", 2)

	for _, id := range []string{"s1", "s2", "s3"} {
		seedEnrollment(t, db, id, course.ID, models.CompletionInProgress, nil)
	}
	setTopic := func(studentID string, topicID uint) {
		t.Helper()
		err := db.Model(&models.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, course.ID).
			Update("current_topic_id", topicID).Error
		if err != nil {
			t.Fatalf("set topic: %v", err)
		}
	}
	setTopic("s1", second.ID)
	setTopic("s2", second.ID)
	setTopic("s3", first.ID)

	n, err := repo.RepointCurrentTopic(ctx, nil, course.ID, second.ID, &first.ID)
	if err != nil {
		t.Fatalf("RepointCurrentTopic() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RepointCurrentTopic() rows = %d, want 2", n)
	}

	n, err = repo.RepointCurrentTopic(ctx, nil, course.ID, first.ID, nil)
	if err != nil {
		t.Fatalf("RepointCurrentTopic(nil) error = %v", err)
	}
	if n != 3 {
		t.Errorf("RepointCurrentTopic(nil) rows = %d, want 3", n)
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		got, err := repo.Get(ctx, nil, id, course.ID)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if got.CurrentTopicID != nil {
			t.Errorf("%s CurrentTopicID = %d, want nil", id, *got.CurrentTopicID)
		}
	}
}
