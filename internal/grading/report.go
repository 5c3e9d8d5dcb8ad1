package grading

import (
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/roster"
)

// StudentGrade pairs a student with their grade, when one exists.
type StudentGrade struct {
	Student models.Student `json:"student"`
	Grade   *Grade         `json:"grade,omitempty"`
	Letter  string         `json:"letter,omitempty"`
}

// ReportStats summarises the graded students of a report.
type ReportStats struct {
	Average  *float64 `json:"average"`
	Highest  *float64 `json:"highest"`
	Lowest   *float64 `json:"lowest"`
	Graded   int      `json:"graded"`
	Students int      `json:"students"`
}

// Report is the grade table of one period.
type Report struct {
	Period     int            `json:"period"`
	PeriodName string         `json:"periodName"`
	Revision   int64          `json:"revision"`
	Rows       []StudentGrade `json:"rows"`
	Stats      ReportStats    `json:"stats"`
}

// PeriodReport grades every pod member of period whose full name contains
// search (case-insensitive). Rows are ordered by final grade, highest first,
// with ungraded students last.
func PeriodReport(s models.AppState, period int, search string) Report {
	needle := strings.ToLower(strings.TrimSpace(search))
	rows := make([]StudentGrade, 0)
	for _, student := range s.Students {
		if student.Period == nil || *student.Period != period || !student.InPod() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(student.FullName()), needle) {
			continue
		}
		row := StudentGrade{Student: student}
		if grade, ok := Calculate(student.ID, s); ok {
			row.Grade = &grade
			row.Letter = grade.Letter()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Grade, rows[j].Grade
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Final() > b.Final()
		}
	})

	return Report{
		Period:     period,
		PeriodName: roster.PeriodName(period),
		Revision:   s.Revision,
		Rows:       rows,
		Stats:      summarise(rows),
	}
}

func summarise(rows []StudentGrade) ReportStats {
	stats := ReportStats{Students: len(rows)}
	var sum float64
	highest, lowest := math.Inf(-1), math.Inf(1)
	for _, row := range rows {
		if row.Grade == nil {
			continue
		}
		final := row.Grade.Final()
		stats.Graded++
		sum += final
		highest = math.Max(highest, final)
		lowest = math.Min(lowest, final)
	}
	if stats.Graded == 0 {
		return stats
	}
	avg := roundTenth(sum / float64(stats.Graded))
	stats.Average = &avg
	stats.Highest = &highest
	stats.Lowest = &lowest
	return stats
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Completion tracks how many peer assessments a pod has submitted.
type Completion struct {
	PodKey     string `json:"podKey"`
	Members    int    `json:"members"`
	Expected   int    `json:"expected"`
	Done       int    `json:"done"`
	Percentage int    `json:"percentage"`
}

// PodCompletion counts the non-self assessments given inside the pod against
// the n*(n-1) every member assessing every other member would produce.
func PodCompletion(s models.AppState, podKey string) Completion {
	members := map[string]struct{}{}
	if pod, ok := s.Pods[podKey]; ok {
		for _, id := range pod.Members {
			if _, _, exists := s.FindStudent(id); exists {
				members[id] = struct{}{}
			}
		}
	}
	n := len(members)
	out := Completion{PodKey: podKey, Members: n, Expected: n * (n - 1)}
	if n == 0 {
		out.Expected = 0
	}

	for _, a := range s.Assessments {
		if a.PodID != podKey || a.IsSelfEval {
			continue
		}
		if _, ok := members[a.AssessorID]; ok {
			out.Done++
		}
	}
	if out.Expected > 0 {
		out.Percentage = int(math.Round(float64(out.Done) / float64(out.Expected) * 100))
	}
	return out
}

// PeriodStats is the dashboard summary of a period.
type PeriodStats struct {
	Period        int                     `json:"period"`
	PeriodName    string                  `json:"periodName"`
	Total         int                     `json:"total"`
	InPods        int                     `json:"inPods"`
	WithRoles     int                     `json:"withRoles"`
	Assessed      int                     `json:"assessed"`
	TeacherGraded int                     `json:"teacherGraded"`
	PodsCount     int                     `json:"podsCount"`
	PodStages     map[models.PodStage]int `json:"podStages"`
}

// DashboardStats is the overview across every period.
type DashboardStats struct {
	TotalStudents         int              `json:"totalStudents"`
	StudentsInPods        int              `json:"studentsInPods"`
	StudentsWithRoles     int              `json:"studentsWithRoles"`
	TotalAssessments      int              `json:"totalAssessments"`
	StudentsGraded        int              `json:"studentsGraded"`
	StudentsNeedingGrades int              `json:"studentsNeedingGrades"`
	Periods               []PeriodStats    `json:"periods"`
	NeedingAssessment     []models.Student `json:"needingAssessment"`
	NeedingTeacherGrade   []models.Student `json:"needingTeacherGrade"`
}

// Dashboard computes overall and per-period progress counts.
func Dashboard(s models.AppState) DashboardStats {
	received := make(map[string]int, len(s.Students))
	for _, a := range s.Assessments {
		received[a.AssesseeID]++
	}

	stats := DashboardStats{
		TotalStudents:       len(s.Students),
		TotalAssessments:    len(s.Assessments),
		StudentsGraded:      len(s.TeacherGrades),
		NeedingAssessment:   []models.Student{},
		NeedingTeacherGrade: []models.Student{},
	}
	for _, student := range s.Students {
		if student.InPod() {
			stats.StudentsInPods++
			if received[student.ID] == 0 {
				stats.NeedingAssessment = append(stats.NeedingAssessment, student)
			}
			if _, graded := s.TeacherGrades[student.ID]; !graded {
				stats.NeedingTeacherGrade = append(stats.NeedingTeacherGrade, student)
			}
		}
		if len(student.Roles) > 0 {
			stats.StudentsWithRoles++
		}
		if grade, ok := Calculate(student.ID, s); !ok || grade.AssessmentCount == 0 {
			stats.StudentsNeedingGrades++
		}
	}

	for _, info := range roster.Periods() {
		stats.Periods = append(stats.Periods, periodStats(s, info, received))
	}
	return stats
}

func periodStats(s models.AppState, info roster.PeriodInfo, received map[string]int) PeriodStats {
	out := PeriodStats{
		Period:     info.Period,
		PeriodName: info.Name,
		PodStages: map[models.PodStage]int{
			models.PodStageNotStarted: 0,
			models.PodStageInProgress: 0,
			models.PodStageCompleted:  0,
		},
	}
	for _, student := range s.Students {
		if student.Period == nil || *student.Period != info.Period {
			continue
		}
		out.Total++
		if student.InPod() {
			out.InPods++
		}
		if len(student.Roles) > 0 {
			out.WithRoles++
		}
		if received[student.ID] > 0 {
			out.Assessed++
		}
		if _, graded := s.TeacherGrades[student.ID]; graded {
			out.TeacherGraded++
		}
	}
	for _, pod := range s.Pods {
		if pod.Period != info.Period {
			continue
		}
		out.PodsCount++
		stage := pod.Stage
		if !stage.Valid() {
			stage = models.PodStageNotStarted
		}
		out.PodStages[stage]++
	}
	return out
}

// ScoreLine is the total and maximum of one group of questions.
type ScoreLine struct {
	Total int `json:"total"`
	Max   int `json:"max"`
}

// AssessmentBreakdown splits one received assessment into role and general totals.
type AssessmentBreakdown struct {
	AssessmentID string    `json:"assessmentId"`
	AssessorID   string    `json:"assessorId"`
	Role         ScoreLine `json:"role"`
	General      ScoreLine `json:"general"`
	Comments     string    `json:"comments,omitempty"`
	Timestamp    int64     `json:"timestamp"`
}

// Breakdown is the detailed view behind a student's grade.
type Breakdown struct {
	StudentID    string                `json:"studentId"`
	Grade        *Grade                `json:"grade,omitempty"`
	Letter       string                `json:"letter,omitempty"`
	Assessments  []AssessmentBreakdown `json:"assessments"`
	TeacherGrade *models.TeacherGrade  `json:"teacherGrade,omitempty"`
}

// StudentBreakdown lists the peer assessments counted toward studentID's grade.
func StudentBreakdown(studentID string, s models.AppState) Breakdown {
	out := Breakdown{StudentID: studentID, Assessments: []AssessmentBreakdown{}}
	if grade, ok := Calculate(studentID, s); ok {
		out.Grade = &grade
		out.Letter = grade.Letter()
	}
	for _, a := range s.Assessments {
		if a.AssesseeID != studentID || a.IsSelfEval {
			continue
		}
		out.Assessments = append(out.Assessments, AssessmentBreakdown{
			AssessmentID: a.ID,
			AssessorID:   a.AssessorID,
			Role:         scoreLine(a.RoleScores),
			General:      scoreLine(a.GeneralScores),
			Comments:     a.Comments,
			Timestamp:    a.Timestamp,
		})
	}
	if tg, ok := s.TeacherGrades[studentID]; ok {
		out.TeacherGrade = &tg
	}
	return out
}

func scoreLine(scores map[string]int) ScoreLine {
	line := ScoreLine{Max: len(scores) * QuestionMaxScore}
	for _, v := range scores {
		line.Total += v
	}
	return line
}
