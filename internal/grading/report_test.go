package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

func TestPeriodReportOrdersByFinalGrade(t *testing.T) {
	s := gradingState()
	s.Students = append(s.Students,
		models.Student{ID: "dee", FirstName: "Dee", LastName: "Park", Homeroom: "7C", Period: models.IntPtr(1), Roles: []string{}},
		models.Student{ID: "eve", FirstName: "Eve", LastName: "Stone", Homeroom: "7A", Period: models.IntPtr(8), PodNumber: models.IntPtr(1), Roles: []string{}},
	)
	s.Assessments = append(s.Assessments,
		peerAssessment("ben", "ana", map[string]int{"sw1": 3}, map[string]int{"g1": 3}),
		peerAssessment("ana", "ben", map[string]int{"sw1": 5}, map[string]int{"g1": 4}),
	)
	s.Revision = 7

	report := PeriodReport(s, 1, "")
	require.Equal(t, "1st Period", report.PeriodName)
	require.Equal(t, int64(7), report.Revision)
	require.Len(t, report.Rows, 3)
	require.Equal(t, "ben", report.Rows[0].Student.ID)
	require.Equal(t, "A", report.Rows[0].Letter)
	require.Equal(t, "ana", report.Rows[1].Student.ID)
	require.Equal(t, "cy", report.Rows[2].Student.ID)
	require.Nil(t, report.Rows[2].Grade)

	require.Equal(t, 2, report.Stats.Graded)
	require.Equal(t, 3, report.Stats.Students)
	require.Equal(t, 90.0, *report.Stats.Highest)
	require.Equal(t, 60.0, *report.Stats.Lowest)
	require.Equal(t, 75.0, *report.Stats.Average)

	filtered := PeriodReport(s, 1, "RAY")
	require.Len(t, filtered.Rows, 1)
	require.Equal(t, "ben", filtered.Rows[0].Student.ID)

	empty := PeriodReport(s, 4, "")
	require.Empty(t, empty.Rows)
	require.Nil(t, empty.Stats.Average)
}

func TestPodCompletion(t *testing.T) {
	s := gradingState()
	s.Assessments = append(s.Assessments,
		peerAssessment("ana", "ben", nil, map[string]int{"g1": 5}),
		peerAssessment("ana", "cy", nil, map[string]int{"g1": 5}),
		peerAssessment("ben", "ana", nil, map[string]int{"g1": 5}),
		peerAssessment("ben", "ben", nil, map[string]int{"g1": 5}),
	)

	c := PodCompletion(s, "1_1")
	require.Equal(t, 3, c.Members)
	require.Equal(t, 6, c.Expected)
	require.Equal(t, 3, c.Done)
	require.Equal(t, 50, c.Percentage)

	missing := PodCompletion(s, "9_9")
	require.Zero(t, missing.Expected)
	require.Zero(t, missing.Percentage)
}

func TestDashboard(t *testing.T) {
	s := gradingState("Script Writer")
	s.Students = append(s.Students, models.Student{ID: "dee", FirstName: "Dee", LastName: "Park", Homeroom: "7A", Period: models.IntPtr(8), Roles: []string{}})
	s.Assessments = append(s.Assessments, peerAssessment("ben", "ana", nil, map[string]int{"g1": 4}))
	s.TeacherGrades["ben"] = models.TeacherGrade{Engagement: 4, Activity: 4}

	d := Dashboard(s)
	require.Equal(t, 4, d.TotalStudents)
	require.Equal(t, 3, d.StudentsInPods)
	require.Equal(t, 1, d.StudentsWithRoles)
	require.Equal(t, 1, d.TotalAssessments)
	require.Equal(t, 1, d.StudentsGraded)
	require.Equal(t, 3, d.StudentsNeedingGrades)
	require.Len(t, d.NeedingAssessment, 2)
	require.Len(t, d.NeedingTeacherGrade, 2)

	require.Len(t, d.Periods, 5)
	first := d.Periods[0]
	require.Equal(t, 1, first.Period)
	require.Equal(t, 3, first.Total)
	require.Equal(t, 1, first.Assessed)
	require.Equal(t, 1, first.PodsCount)
	require.Equal(t, 1, first.PodStages[models.PodStageInProgress])
}

func TestStudentBreakdown(t *testing.T) {
	s := gradingState()
	s.Assessments = append(s.Assessments,
		peerAssessment("ben", "ana", map[string]int{"sw1": 4, "sw2": 5}, map[string]int{"g1": 3}),
		peerAssessment("ana", "ana", map[string]int{"sw1": 5}, nil),
	)
	s.TeacherGrades["ana"] = models.TeacherGrade{Engagement: 5, Activity: 4}

	b := StudentBreakdown("ana", s)
	require.NotNil(t, b.Grade)
	require.Len(t, b.Assessments, 1)
	require.Equal(t, ScoreLine{Total: 9, Max: 10}, b.Assessments[0].Role)
	require.Equal(t, ScoreLine{Total: 3, Max: 5}, b.Assessments[0].General)
	require.Equal(t, 4.0, b.TeacherGrade.Activity)
}
