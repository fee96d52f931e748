package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func enrollVia(t *testing.T, s *testServer, student string, courseID uint) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/enrollments", student, map[string]interface{}{
		"student_id": student,
		"course_id":  courseID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAdminRoutes_Moderation(t *testing.T) {
	s := newTestServer(t)
	course, _ := s.course(t, nil)
	enrollVia(t, s, "student-1", course.ID)

	completion := fmt.Sprintf("/api/v1/admin/moderation/completion/student-1/%d", course.ID)

	w := s.do(t, http.MethodPut, completion, "student-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "students never reach admin routes")

	w = s.do(t, http.MethodPut, completion, "admin-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "junior admins cannot moderate")

	w = s.do(t, http.MethodPut, completion, "admin-2", map[string]string{"reason": "verified offline"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var enrollment struct {
		CompletionStatus models.CompletionStatus `json:"completion_status"`
	}
	decode(t, w, &enrollment)
	assert.Equal(t, models.CompletionCompleted, enrollment.CompletionStatus)

	rating := fmt.Sprintf("/api/v1/admin/moderation/ratings/student-1/%d", course.ID)
	w = s.do(t, http.MethodPut, rating, "admin-2", map[string]int{"rating": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/moderation/reviews/student-2/%d", course.ID), "admin-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestAdminRoutes_AuditTrail(t *testing.T) {
	s := newTestServer(t)
	course, _ := s.course(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/admin/universities", "admin-1", map[string]string{
		"name":    "Gopher University",
		"country": "NZ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin/statistics/recompute", "admin-1", map[string]uint{"course_id": course.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/admin/audit?admin_user_id=admin-1", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var audit struct {
		Entries []struct {
			Action     string `json:"action"`
			StatusCode int    `json:"status_code"`
		} `json:"entries"`
		Total int64 `json:"total"`
	}
	decode(t, w, &audit)
	assert.EqualValues(t, 2, audit.Total)

	actions := make([]string, 0, len(audit.Entries))
	for _, e := range audit.Entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "POST /api/v1/admin/universities")
	assert.Contains(t, actions, "POST /api/v1/admin/statistics/recompute")

	w = s.do(t, http.MethodGet, "/api/v1/admin/audit?date_from=yesterday", "admin-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes_CourseReview(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/courses", "instructor-1", map[string]interface{}{
		"title":           "Pending Course",
		"quiz_answer_key": "ABCD",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decode(t, w, &created)
	assert.Equal(t, string(models.CoursePending), created.Status)

	w = s.do(t, http.MethodPost, "/api/v1/courses", "student-1", map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/courses/%d/approve", created.ID), "instructor-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/courses/%d/approve", created.ID), "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	enrollVia(t, s, "student-1", created.ID)
}

func TestStatisticsRoutes_Analytics(t *testing.T) {
	s := newTestServer(t)
	course, _ := s.course(t, nil)
	enrollVia(t, s, "student-1", course.ID)

	w := s.do(t, http.MethodGet, "/api/v1/analytics/overview", "student-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/analytics/overview?top=5", "analyst-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/analytics/export", "analyst-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	assert.Contains(t, book.GetSheetList(), "Courses")

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/statistics/courses/%d", course.ID), "instructor-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/statistics/students/student-1", "student-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQuizRoutes_ImportWorkbook(t *testing.T) {
	s := newTestServer(t)
	course, _ := s.course(t, nil)

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"position", "prompt", "options", "answer"},
		{1, "Capital of France?", "Paris|Rome", "a"},
		{2, "2+2?", "3|4", "B"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}
	var workbook bytes.Buffer
	require.NoError(t, book.Write(&workbook))
	require.NoError(t, book.Close())

	upload := func(user string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("file", "quiz.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook.Bytes())
		require.NoError(t, err)
		require.NoError(t, form.WriteField("title", "Basics"))
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/quiz/import", course.ID), &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		return s.send(req, user)
	}

	w := upload("student-1")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = upload("instructor-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/quiz", course.ID), "student-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quiz struct {
		Title     string `json:"title"`
		Questions []struct {
			CorrectAnswer string `json:"correct_answer"`
		} `json:"questions"`
	}
	decode(t, w, &quiz)
	assert.Equal(t, "Basics", quiz.Title)
	require.Len(t, quiz.Questions, 2)
	for _, q := range quiz.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/quiz/import", course.ID), nil)
	w = s.send(req, "instructor-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
