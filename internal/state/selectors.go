package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/roster"
)

// StudentsByPeriod returns the students whose derived period is period.
func StudentsByPeriod(s models.AppState, period int) []models.Student {
	out := make([]models.Student, 0)
	for _, student := range s.Students {
		if student.Period != nil && *student.Period == period {
			out = append(out, student)
		}
	}
	return out
}

// PodsByPeriod returns the pods of a period ordered by pod number.
func PodsByPeriod(s models.AppState, period int) []models.Pod {
	out := make([]models.Pod, 0)
	for _, pod := range s.Pods {
		if pod.Period == period {
			out = append(out, pod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PodNumber < out[j].PodNumber })
	return out
}

// PodMembers resolves a pod's member ids to students, in member order.
// Ids without a matching student are skipped.
func PodMembers(s models.AppState, podKey string) []models.Student {
	pod, ok := s.Pods[podKey]
	if !ok {
		return []models.Student{}
	}
	byID := make(map[string]models.Student, len(s.Students))
	for _, student := range s.Students {
		byID[student.ID] = student
	}
	out := make([]models.Student, 0, len(pod.Members))
	for _, id := range pod.Members {
		if student, ok := byID[id]; ok {
			out = append(out, student)
		}
	}
	return out
}

// AssessmentsReceived lists assessments about studentID, self evaluations included.
func AssessmentsReceived(s models.AppState, studentID string) []models.Assessment {
	out := make([]models.Assessment, 0)
	for _, a := range s.Assessments {
		if a.AssesseeID == studentID {
			out = append(out, a)
		}
	}
	return out
}

// AssessmentsGiven lists assessments submitted by studentID.
func AssessmentsGiven(s models.AppState, studentID string) []models.Assessment {
	out := make([]models.Assessment, 0)
	for _, a := range s.Assessments {
		if a.AssessorID == studentID {
			out = append(out, a)
		}
	}
	return out
}

// ErrUnknownStudent reports a lookup of a student id that is not on the roster.
var ErrUnknownStudent = errors.New("student not found")

// RequireStudent returns the student with id or ErrUnknownStudent.
func RequireStudent(s models.AppState, id string) (models.Student, error) {
	student, _, ok := s.FindStudent(id)
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %s", ErrUnknownStudent, id)
	}
	return student, nil
}

// MatchImportRow returns the roster index a bulk pod import row applies to,
// or -1 when BULK_IMPORT_POD_DATA would skip the row.
func MatchImportRow(s models.AppState, row PodImportRow) int {
	if row.PodNumber == nil || *row.PodNumber <= 0 {
		return -1
	}
	idx := matchStudent(s.Students, row)
	if idx < 0 {
		return -1
	}
	if _, ok := roster.LookupHomeroom(s.Students[idx].Homeroom); !ok {
		return -1
	}
	return idx
}
