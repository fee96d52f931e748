package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-service/internal/models"
)

type progressBody struct {
	CurrentTopicID *uint `json:"current_topic_id"`
}

type assessmentBody struct {
	Score            int                     `json:"score"`
	Grade            string                  `json:"grade"`
	Passed           bool                    `json:"passed"`
	CompletionStatus models.CompletionStatus `json:"completion_status"`
	Source           string                  `json:"source"`
}

func TestEnrollmentRoutes_ProgressFlow(t *testing.T) {
	s := newTestServer(t)
	course, topics := s.course(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/enrollments", "student-1", map[string]interface{}{
		"student_id": "student-1",
		"course_id":  course.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	base := fmt.Sprintf("/api/v1/enrollments/%%s/student-1/%d", course.ID)

	w = s.do(t, http.MethodPut, fmt.Sprintf(base, "progress")+fmt.Sprintf("/%d", topics[2].ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var progress progressBody
	decode(t, w, &progress)
	require.NotNil(t, progress.CurrentTopicID)
	assert.Equal(t, topics[2].ID, *progress.CurrentTopicID)

	w = s.do(t, http.MethodPut, fmt.Sprintf(base, "rollback")+fmt.Sprintf("/%d", topics[2].ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &progress)
	require.NotNil(t, progress.CurrentTopicID)
	assert.Equal(t, topics[1].ID, *progress.CurrentTopicID)

	w = s.do(t, http.MethodPut, fmt.Sprintf(base, "reset"), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &progress)
	require.NotNil(t, progress.CurrentTopicID)
	assert.Equal(t, topics[0].ID, *progress.CurrentTopicID)

	// The final assessment is a valid advance target
	w = s.do(t, http.MethodPut, fmt.Sprintf(base, "progress")+fmt.Sprintf("/%d", topics[3].ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf(base, "assessment"), "student-1", map[string]int{"score": 95})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result assessmentBody
	decode(t, w, &result)
	assert.Equal(t, 95, result.Score)
	assert.Equal(t, "A", result.Grade)
	assert.True(t, result.Passed)
	assert.Equal(t, models.CompletionCompleted, result.CompletionStatus)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/enrollments/student-1/%d", course.ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var enrollment struct {
		Grade            *string                 `json:"grade"`
		CompletionStatus models.CompletionStatus `json:"completion_status"`
	}
	decode(t, w, &enrollment)
	require.NotNil(t, enrollment.Grade)
	assert.Equal(t, "A", *enrollment.Grade)
	assert.Equal(t, models.CompletionCompleted, enrollment.CompletionStatus)
}

func TestEnrollmentRoutes_AnswerKeyAssessment(t *testing.T) {
	s := newTestServer(t)
	key := "ABAC"
	course, _ := s.course(t, &key)

	w := s.do(t, http.MethodPost, "/api/v1/enrollments", "student-1", map[string]interface{}{
		"student_id": "student-1",
		"course_id":  course.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	path := fmt.Sprintf("/api/v1/enrollments/assessment/student-1/%d", course.ID)
	w = s.do(t, http.MethodPost, path, "student-1", map[string]interface{}{
		"answers": []interface{}{"a", "B", nil, "D"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result assessmentBody
	decode(t, w, &result)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, "D", result.Grade)
	assert.Equal(t, "answer_key", result.Source)
}

func TestEnrollmentRoutes_StatusMapping(t *testing.T) {
	s := newTestServer(t)
	course, topics := s.course(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/enrollments", "student-1", map[string]interface{}{
		"student_id": "student-1",
		"course_id":  course.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	progress := func(student string, courseID interface{}, topicID interface{}) string {
		return fmt.Sprintf("/api/v1/enrollments/progress/%s/%v/%v", student, courseID, topicID)
	}
	assessment := fmt.Sprintf("/api/v1/enrollments/assessment/student-1/%d", course.ID)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   interface{}
		want   int
	}{
		{"missing token", http.MethodPut, progress("student-1", course.ID, topics[0].ID), "", nil, http.StatusUnauthorized},
		{"invalid token", http.MethodPut, progress("student-1", course.ID, topics[0].ID), "bad", nil, http.StatusUnauthorized},
		{"other student", http.MethodPut, progress("student-1", course.ID, topics[0].ID), "student-2", nil, http.StatusForbidden},
		{"instructor is not admin", http.MethodPut, progress("student-1", course.ID, topics[0].ID), "instructor-1", nil, http.StatusForbidden},
		{"admin on behalf", http.MethodPut, progress("student-1", course.ID, topics[1].ID), "admin-1", nil, http.StatusOK},
		{"bad course id", http.MethodPut, progress("student-1", "abc", topics[0].ID), "student-1", nil, http.StatusBadRequest},
		{"bad topic id", http.MethodPut, progress("student-1", course.ID, 0), "student-1", nil, http.StatusBadRequest},
		{"unknown course", http.MethodPut, progress("student-1", 9999, topics[0].ID), "student-1", nil, http.StatusNotFound},
		{"unmapped topic", http.MethodPut, progress("student-1", course.ID, 9999), "student-1", nil, http.StatusNotFound},
		{"rollback from final assessment", http.MethodPut, fmt.Sprintf("/api/v1/enrollments/rollback/student-1/%d/%d", course.ID, topics[3].ID), "student-1", nil, http.StatusBadRequest},
		{"score and answers", http.MethodPost, assessment, "student-1", map[string]interface{}{"score": 80, "answers": []string{"A"}}, http.StatusBadRequest},
		{"neither score nor answers", http.MethodPost, assessment, "student-1", map[string]interface{}{}, http.StatusBadRequest},
		{"score out of range", http.MethodPost, assessment, "student-1", map[string]int{"score": 101}, http.StatusBadRequest},
		{"answers without key", http.MethodPost, assessment, "student-1", map[string]interface{}{"answers": []string{"A"}}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, assessment, "student-1", "not an object", http.StatusBadRequest},
		{"duplicate enrollment", http.MethodPost, "/api/v1/enrollments", "student-1", map[string]interface{}{"student_id": "student-1", "course_id": course.ID}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestEnrollmentRoutes_ListAndRate(t *testing.T) {
	s := newTestServer(t)
	course, _ := s.course(t, nil)

	for _, student := range []string{"student-1", "student-2"} {
		w := s.do(t, http.MethodPost, "/api/v1/enrollments", student, map[string]interface{}{
			"student_id": student,
			"course_id":  course.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/enrollments/course/%d", course.ID), "instructor-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &list)
	assert.EqualValues(t, 2, list.Total)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/enrollments/course/%d", course.ID), "student-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/enrollments/student/student-1", "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &list)
	assert.EqualValues(t, 1, list.Total)

	rate := fmt.Sprintf("/api/v1/enrollments/rating/student-1/%d", course.ID)
	w = s.do(t, http.MethodPut, rate, "student-1", map[string]interface{}{"rating": 4, "review_text": "solid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, rate, "student-1", map[string]interface{}{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/users/me", "instructor-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		ID   string          `json:"id"`
		Role models.UserRole `json:"role"`
	}
	decode(t, w, &me)
	assert.Equal(t, "instructor-1", me.ID)
	assert.Equal(t, models.RoleInstructor, me.Role)

	w = s.do(t, http.MethodGet, "/api/v1/users/nobody", "student-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users?q=admin", "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &list)
	assert.EqualValues(t, 2, list.Total)
}
