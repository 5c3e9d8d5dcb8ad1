// Package grading derives composite grades from a state snapshot. Nothing in
// here is stored; every result is recomputed from the assessments and
// teacher grades it is given.
package grading

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

const (
	// QuestionMaxScore is the ceiling of every rating question.
	QuestionMaxScore = 5
	// MaxFinalGrade bounds the final grade once the role bonus is applied.
	MaxFinalGrade = 110.0

	peerWeight           = 0.6
	teacherWeight        = 0.4
	bonusPerExtraRole    = 5.0
	maxRoleBonus         = 15.0
	teacherScaleMaxTotal = 10.0
)

// Grade is the derived grade summary of one student. Score fields are
// formatted with one decimal place.
type Grade struct {
	StudentID       string `json:"studentId"`
	PeerScore       string `json:"peerScore"`
	TeacherScore    string `json:"teacherScore"`
	BonusPoints     string `json:"bonusPoints"`
	FinalGrade      string `json:"finalGrade"`
	AssessmentCount int    `json:"assessmentCount"`
	NumRoles        int    `json:"numRoles"`
	HasTeacherGrade bool   `json:"hasTeacherGrade"`

	final float64
}

// Final returns the final grade at display precision.
func (g Grade) Final() float64 {
	return g.final
}

// UnmarshalJSON restores the numeric final grade from its text form.
func (g *Grade) UnmarshalJSON(data []byte) error {
	type plain Grade
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = Grade(p)
	g.final, _ = strconv.ParseFloat(g.FinalGrade, 64)
	return nil
}

// Letter returns the letter band of the final grade.
func (g Grade) Letter() string {
	return LetterGrade(g.final)
}

// Calculate computes the grade of studentID from s. The boolean is false when
// there is nothing to grade: no peer assessments and no teacher grade, or an
// unknown student.
func Calculate(studentID string, s models.AppState) (Grade, bool) {
	student, _, ok := s.FindStudent(studentID)
	if !ok {
		return Grade{}, false
	}

	var total, max float64
	count := 0
	for _, assessment := range s.Assessments {
		if assessment.AssesseeID != studentID || assessment.IsSelfEval {
			continue
		}
		count++
		for _, score := range assessment.RoleScores {
			total += float64(score)
			max += QuestionMaxScore
		}
		for _, score := range assessment.GeneralScores {
			total += float64(score)
			max += QuestionMaxScore
		}
	}

	teacher, hasTeacher := s.TeacherGrades[studentID]
	if count == 0 && !hasTeacher {
		return Grade{}, false
	}

	peerPct := 0.0
	if max > 0 {
		peerPct = total / max * 100
	}

	teacherPct := 0.0
	if hasTeacher {
		teacherPct = (teacher.Engagement + teacher.Activity) / teacherScaleMaxTotal * 100
	}

	numRoles := len(student.Roles)
	bonus := RoleBonus(numRoles)

	final := peerPct + bonus
	if hasTeacher {
		final = peerPct*peerWeight + teacherPct*teacherWeight + bonus
	}
	final = math.Min(final, MaxFinalGrade)
	finalText := formatScore(final)
	rounded, _ := strconv.ParseFloat(finalText, 64)

	return Grade{
		StudentID:       studentID,
		PeerScore:       formatScore(peerPct),
		TeacherScore:    formatScore(teacherPct),
		BonusPoints:     formatScore(bonus),
		FinalGrade:      finalText,
		AssessmentCount: count,
		NumRoles:        numRoles,
		HasTeacherGrade: hasTeacher,
		final:           rounded,
	}, true
}

// RoleBonus is the percentage-point bonus for holding numRoles roles.
func RoleBonus(numRoles int) float64 {
	if numRoles <= 1 {
		return 0
	}
	return math.Min(float64(numRoles-1)*bonusPerExtraRole, maxRoleBonus)
}

// LetterGrade maps a percentage to its letter band.
func LetterGrade(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}

// formatScore rounds half up to one decimal place. Scores are never negative.
func formatScore(v float64) string {
	return strconv.FormatFloat(math.Floor(v*10+0.5)/10, 'f', 1, 64)
}
