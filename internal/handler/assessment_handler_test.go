package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/grading"
	"github.com/noah-isme/pod-grading-api/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func seedPod(t *testing.T, env *testEnv, ids ...string) {
	t.Helper()
	for _, id := range ids {
		resp, _ := env.request(t, http.MethodPut, "/api/v1/students/"+id+"/pod", dto.PodAssignRequest{Period: 1, PodNumber: 1})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestSubmitAssessmentAndGrade(t *testing.T) {
	env := newTestEnv(t)
	seedPod(t, env, "id-001", "id-002")

	resp, body := env.request(t, http.MethodPost, "/api/v1/assessments", dto.AssessmentCreateRequest{
		AssessorID:    "id-002",
		AssesseeID:    "id-001",
		PodID:         "1_1",
		GeneralScores: map[string]int{"g1": 4, "g2": 4, "g3": 4},
		Comments:      "<b>great</b> teammate",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var assessment models.Assessment
	decodeData(t, body, &assessment)
	require.False(t, assessment.IsSelfEval)
	require.Equal(t, "great teammate", assessment.Comments)

	resp, _ = env.request(t, http.MethodPut, "/api/v1/teacher-grades/id-001", dto.TeacherGradeRequest{
		Engagement: floatPtr(4.5),
		Activity:   floatPtr(4.5),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/v1/grades/students/id-001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var breakdown grading.Breakdown
	decodeData(t, body, &breakdown)
	require.NotNil(t, breakdown.Grade)
	require.Equal(t, "80.0", breakdown.Grade.PeerScore)
	require.Equal(t, "90.0", breakdown.Grade.TeacherScore)
	require.Equal(t, "84.0", breakdown.Grade.FinalGrade)
	require.Equal(t, "B", breakdown.Letter)
	require.Len(t, breakdown.Assessments, 1)

	resp, body = env.request(t, http.MethodGet, "/api/v1/assessments?assessee_id=id-001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []models.Assessment
	decodeData(t, body, &listed)
	require.Len(t, listed, 1)

	resp, body = env.request(t, http.MethodGet, "/api/v1/assessments?assessor_id=id-001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeData(t, body, &listed)
	require.Empty(t, listed)
}

func TestSubmitAssessmentRejectsOutOfRangeScores(t *testing.T) {
	env := newTestEnv(t)
	seedPod(t, env, "id-001", "id-002")

	resp, _ := env.request(t, http.MethodPost, "/api/v1/assessments", dto.AssessmentCreateRequest{
		AssessorID:    "id-002",
		AssesseeID:    "id-001",
		PodID:         "1_1",
		GeneralScores: map[string]int{"g1": 6},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/assessments", dto.AssessmentCreateRequest{
		AssessorID: "ghost",
		AssesseeID: "id-001",
		PodID:      "1_1",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Empty(t, env.store.State().Assessments)
}

func TestTeacherGradeRequiresHalfSteps(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPut, "/api/v1/teacher-grades/id-001", dto.TeacherGradeRequest{
		Engagement: floatPtr(3.3),
		Activity:   floatPtr(4),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPut, "/api/v1/teacher-grades/id-001", dto.TeacherGradeRequest{
		Activity: floatPtr(4),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPut, "/api/v1/teacher-grades/ghost", dto.TeacherGradeRequest{
		Engagement: floatPtr(3),
		Activity:   floatPtr(4),
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Empty(t, env.store.State().TeacherGrades)
}

func TestPeriodReportAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	seedPod(t, env, "id-001", "id-002")
	env.request(t, http.MethodPost, "/api/v1/assessments", dto.AssessmentCreateRequest{
		AssessorID:    "id-001",
		AssesseeID:    "id-002",
		PodID:         "1_1",
		GeneralScores: map[string]int{"g1": 5, "g2": 5, "g3": 5},
	})

	resp, body := env.request(t, http.MethodGet, "/api/v1/grades/periods/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report grading.Report
	decodeData(t, body, &report)
	require.Equal(t, 1, report.Period)
	require.Len(t, report.Rows, 2)
	require.Equal(t, "id-002", report.Rows[0].Student.ID)
	require.Equal(t, "A", report.Rows[0].Letter)
	require.Nil(t, report.Rows[1].Grade)
	require.Equal(t, 1, report.Stats.Graded)

	resp, _ = env.request(t, http.MethodGet, "/api/v1/grades/periods/zero", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats grading.DashboardStats
	decodeData(t, body, &stats)
}

func TestResetRoutes(t *testing.T) {
	env := newTestEnv(t)
	seedPod(t, env, "id-001", "id-002")
	env.request(t, http.MethodPut, "/api/v1/teacher-grades/id-001", dto.TeacherGradeRequest{
		Engagement: floatPtr(4),
		Activity:   floatPtr(4),
	})

	resp, _ := env.request(t, http.MethodPost, "/api/v1/reset/assessments", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snapshot := env.store.State()
	require.Empty(t, snapshot.TeacherGrades)
	require.Contains(t, snapshot.Pods, "1_1")

	resp, _ = env.request(t, http.MethodPost, "/api/v1/students", dto.StudentCreateRequest{FirstName: "Eve", LastName: "Stone", Homeroom: "7D"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/reset/all", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snapshot = env.store.State()
	require.Len(t, snapshot.Students, 4)
	require.Empty(t, snapshot.Pods)
}
