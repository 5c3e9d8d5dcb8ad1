package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

// ErrMalformedSnapshot is returned when a stored document is not a snapshot.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

type migration func(doc map[string]any)

// migrations[i] upgrades a version i+1 document to version i+2.
var migrations = []migration{
	migrateV1ToV2,
}

// Migrate decodes a stored snapshot, upgrading older layouts to
// models.CurrentSchemaVersion. It returns the schema version the document was
// stored with.
func Migrate(data []byte) (models.AppState, int, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.AppState{}, 0, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc == nil {
		return models.AppState{}, 0, fmt.Errorf("%w: empty document", ErrMalformedSnapshot)
	}
	if _, ok := doc["students"]; !ok {
		return models.AppState{}, 0, fmt.Errorf("%w: students missing", ErrMalformedSnapshot)
	}

	from := 1
	if v, ok := doc["schemaVersion"].(float64); ok && v >= 1 {
		from = int(v)
	}
	if from > models.CurrentSchemaVersion {
		return models.AppState{}, from, fmt.Errorf("%w: schema version %d is newer than %d", ErrMalformedSnapshot, from, models.CurrentSchemaVersion)
	}
	for version := from; version < models.CurrentSchemaVersion; version++ {
		migrations[version-1](doc)
	}
	doc["schemaVersion"] = models.CurrentSchemaVersion

	upgraded, err := json.Marshal(doc)
	if err != nil {
		return models.AppState{}, from, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	var s models.AppState
	if err := json.Unmarshal(upgraded, &s); err != nil {
		return models.AppState{}, from, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return Normalize(s), from, nil
}

// migrateV1ToV2 turns the single role fields into role lists:
// role -> roles, sharedRole+sharedWith -> sharedRoles, assesseeRole -> assesseeRoles.
func migrateV1ToV2(doc map[string]any) {
	students, _ := doc["students"].([]any)
	for _, item := range students {
		student, ok := item.(map[string]any)
		if !ok {
			continue
		}
		roles := []any{}
		if existing, ok := student["roles"].([]any); ok {
			roles = existing
		} else if role, ok := student["role"].(string); ok && role != "" {
			roles = []any{role}
		}
		student["roles"] = roles

		if _, ok := student["sharedRoles"].(map[string]any); !ok {
			shared := map[string]any{}
			if flag, _ := student["sharedRole"].(bool); flag {
				with, _ := student["sharedWith"].([]any)
				if with == nil {
					with = []any{}
				}
				for _, role := range roles {
					if name, ok := role.(string); ok {
						shared[name] = with
					}
				}
			}
			student["sharedRoles"] = shared
		}
		delete(student, "role")
		delete(student, "sharedRole")
		delete(student, "sharedWith")
	}

	assessments, _ := doc["assessments"].([]any)
	for _, item := range assessments {
		assessment, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := assessment["assesseeRoles"]; !ok {
			if role, ok := assessment["assesseeRole"].(string); ok && role != "" {
				assessment["assesseeRoles"] = []any{role}
			}
		}
		delete(assessment, "assesseeRole")
	}
}

// Normalize fills nil collections and derived defaults so every consumer sees
// the same shape regardless of where the snapshot came from.
func Normalize(s models.AppState) models.AppState {
	s.SchemaVersion = models.CurrentSchemaVersion
	if s.Students == nil {
		s.Students = []models.Student{}
	}
	for i, student := range s.Students {
		if student.Roles == nil {
			student.Roles = []string{}
		}
		if student.SharedRoles == nil {
			student.SharedRoles = map[string][]string{}
		}
		if student.PeriodName == "" {
			student.PeriodName = models.UnassignedPeriodName
		}
		s.Students[i] = student
	}
	if s.Pods == nil {
		s.Pods = map[string]models.Pod{}
	}
	for key, pod := range s.Pods {
		if pod.ID == "" {
			pod.ID = key
		}
		if pod.Members == nil {
			pod.Members = []string{}
		}
		if !pod.Stage.Valid() {
			pod.Stage = models.PodStageNotStarted
		}
		s.Pods[key] = pod
	}
	if s.Assessments == nil {
		s.Assessments = []models.Assessment{}
	}
	if s.TeacherGrades == nil {
		s.TeacherGrades = map[string]models.TeacherGrade{}
	}
	if s.CurrentPeriod == 0 {
		s.CurrentPeriod = 1
	}
	return s
}
