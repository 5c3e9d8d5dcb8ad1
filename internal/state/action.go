// Package state holds the application snapshot reducer and the Store that
// owns the current snapshot for the process.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionImportStudents           ActionType = "IMPORT_STUDENTS"
	ActionAddStudents              ActionType = "ADD_STUDENTS"
	ActionAddStudent               ActionType = "ADD_STUDENT"
	ActionUpdateStudent            ActionType = "UPDATE_STUDENT"
	ActionUpdateStudentHomeroom    ActionType = "UPDATE_STUDENT_HOMEROOM"
	ActionDeleteStudent            ActionType = "DELETE_STUDENT"
	ActionAssignPod                ActionType = "ASSIGN_POD"
	ActionRemoveFromPod            ActionType = "REMOVE_FROM_POD"
	ActionAssignRoles              ActionType = "ASSIGN_ROLES"
	ActionBulkImportPodData        ActionType = "BULK_IMPORT_POD_DATA"
	ActionBulkDeletePodAssignments ActionType = "BULK_DELETE_POD_ASSIGNMENTS"
	ActionAddAssessment            ActionType = "ADD_ASSESSMENT"
	ActionUpdatePodStage           ActionType = "UPDATE_POD_STAGE"
	ActionAddTeacherGrade          ActionType = "ADD_TEACHER_GRADE"
	ActionSetCurrentPeriod         ActionType = "SET_CURRENT_PERIOD"
	ActionSetCurrentPod            ActionType = "SET_CURRENT_POD"
	ActionResetAllData             ActionType = "RESET_ALL_DATA"
	ActionResetAssessments         ActionType = "RESET_ASSESSMENTS"
)

// ErrInvalidAction is returned when an action envelope cannot be decoded.
var ErrInvalidAction = errors.New("invalid action")

// Action is a discriminated state transition request. Payload holds the
// typed payload matching Type.
type Action struct {
	Type    ActionType
	Payload any
}

// UpdateStudentPayload shallow-merges Updates into the student with ID.
type UpdateStudentPayload struct {
	ID      string              `json:"id"`
	Updates models.StudentPatch `json:"updates"`
}

// StudentRef targets a single student.
type StudentRef struct {
	StudentID string `json:"studentId"`
}

// HomeroomPayload moves a student to another homeroom.
type HomeroomPayload struct {
	StudentID string `json:"studentId"`
	Homeroom  string `json:"homeroom"`
}

// AssignPodPayload places a student into a pod of a period.
type AssignPodPayload struct {
	StudentID string `json:"studentId"`
	PodNumber int    `json:"podNumber"`
	Period    int    `json:"period"`
}

// AssignRolesPayload replaces a student's roles and shared roles.
type AssignRolesPayload struct {
	StudentID   string              `json:"studentId"`
	Roles       []string            `json:"roles"`
	SharedRoles map[string][]string `json:"sharedRoles"`
}

// PodImportRow is one record of a bulk pod assignment import.
type PodImportRow struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Homeroom    string   `json:"homeroom"`
	PodNumber   *int     `json:"podNumber"`
	Roles       []string `json:"roles"`
	SharedRoles []string `json:"sharedRoles"`
}

// UnmarshalJSON accepts roles as "roles" or the legacy "role" key, each either
// a list or a comma-separated string, and shared roles as "sharedRoles" or the
// legacy boolean "sharedRole" flag (which marks every role as shared).
func (r *PodImportRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		FirstName   string          `json:"firstName"`
		LastName    string          `json:"lastName"`
		Homeroom    string          `json:"homeroom"`
		PodNumber   *int            `json:"podNumber"`
		Roles       json.RawMessage `json:"roles"`
		Role        json.RawMessage `json:"role"`
		SharedRoles json.RawMessage `json:"sharedRoles"`
		SharedRole  json.RawMessage `json:"sharedRole"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	roles, err := decodeRoleList(raw.Roles)
	if err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	if len(roles) == 0 {
		if roles, err = decodeRoleList(raw.Role); err != nil {
			return fmt.Errorf("role: %w", err)
		}
	}

	shared, err := decodeRoleList(raw.SharedRoles)
	if err != nil {
		return fmt.Errorf("sharedRoles: %w", err)
	}
	if len(shared) == 0 && len(raw.SharedRole) > 0 {
		var flag bool
		if json.Unmarshal(raw.SharedRole, &flag) == nil && flag {
			shared = append([]string(nil), roles...)
		}
	}

	*r = PodImportRow{
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		Homeroom:    raw.Homeroom,
		PodNumber:   raw.PodNumber,
		Roles:       roles,
		SharedRoles: shared,
	}
	return nil
}

func decodeRoleList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return SplitRoles(strings.Join(list, ",")), nil
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, err
	}
	return SplitRoles(joined), nil
}

// SplitRoles splits a comma-separated role list, trimming blanks.
func SplitRoles(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// PeriodPayload targets every pod of a period.
type PeriodPayload struct {
	Period int `json:"period"`
}

// PodStagePayload sets the stage of the pod at PodKey.
type PodStagePayload struct {
	PodKey string          `json:"podKey"`
	Stage  models.PodStage `json:"stage"`
}

// TeacherGradePayload upserts the teacher grade of a student.
type TeacherGradePayload struct {
	StudentID string              `json:"studentId"`
	Grades    models.TeacherGrade `json:"grades"`
}

func ImportStudents(students []models.StudentInput) Action {
	return Action{Type: ActionImportStudents, Payload: students}
}

func AddStudents(students []models.StudentInput) Action {
	return Action{Type: ActionAddStudents, Payload: students}
}

func AddStudent(student models.StudentInput) Action {
	return Action{Type: ActionAddStudent, Payload: student}
}

func UpdateStudent(id string, updates models.StudentPatch) Action {
	return Action{Type: ActionUpdateStudent, Payload: UpdateStudentPayload{ID: id, Updates: updates}}
}

func UpdateStudentHomeroom(studentID, homeroom string) Action {
	return Action{Type: ActionUpdateStudentHomeroom, Payload: HomeroomPayload{StudentID: studentID, Homeroom: homeroom}}
}

func DeleteStudent(studentID string) Action {
	return Action{Type: ActionDeleteStudent, Payload: StudentRef{StudentID: studentID}}
}

func AssignPod(studentID string, period, podNumber int) Action {
	return Action{Type: ActionAssignPod, Payload: AssignPodPayload{StudentID: studentID, Period: period, PodNumber: podNumber}}
}

func RemoveFromPod(studentID string) Action {
	return Action{Type: ActionRemoveFromPod, Payload: StudentRef{StudentID: studentID}}
}

func AssignRoles(studentID string, roles []string, sharedRoles map[string][]string) Action {
	return Action{Type: ActionAssignRoles, Payload: AssignRolesPayload{StudentID: studentID, Roles: roles, SharedRoles: sharedRoles}}
}

func BulkImportPodData(rows []PodImportRow) Action {
	return Action{Type: ActionBulkImportPodData, Payload: rows}
}

func BulkDeletePodAssignments(period int) Action {
	return Action{Type: ActionBulkDeletePodAssignments, Payload: PeriodPayload{Period: period}}
}

func AddAssessment(input models.AssessmentInput) Action {
	return Action{Type: ActionAddAssessment, Payload: input}
}

func UpdatePodStage(podKey string, stage models.PodStage) Action {
	return Action{Type: ActionUpdatePodStage, Payload: PodStagePayload{PodKey: podKey, Stage: stage}}
}

func AddTeacherGrade(studentID string, grade models.TeacherGrade) Action {
	return Action{Type: ActionAddTeacherGrade, Payload: TeacherGradePayload{StudentID: studentID, Grades: grade}}
}

func SetCurrentPeriod(period int) Action {
	return Action{Type: ActionSetCurrentPeriod, Payload: period}
}

func SetCurrentPod(podKey *string) Action {
	return Action{Type: ActionSetCurrentPod, Payload: podKey}
}

func ResetAllData() Action {
	return Action{Type: ActionResetAllData}
}

func ResetAssessments() Action {
	return Action{Type: ActionResetAssessments}
}

type envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeAction parses a {"type","payload"} envelope into a typed Action.
// Unknown types decode into a payload-less action that the reducer ignores.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if strings.TrimSpace(string(env.Type)) == "" {
		return Action{}, fmt.Errorf("%w: type is required", ErrInvalidAction)
	}

	var payload any
	var err error
	switch env.Type {
	case ActionImportStudents, ActionAddStudents:
		payload, err = decodePayload[[]models.StudentInput](env.Payload)
	case ActionAddStudent:
		payload, err = decodePayload[models.StudentInput](env.Payload)
	case ActionUpdateStudent:
		payload, err = decodePayload[UpdateStudentPayload](env.Payload)
	case ActionUpdateStudentHomeroom:
		payload, err = decodePayload[HomeroomPayload](env.Payload)
	case ActionDeleteStudent, ActionRemoveFromPod:
		payload, err = decodePayload[StudentRef](env.Payload)
	case ActionAssignPod:
		payload, err = decodePayload[AssignPodPayload](env.Payload)
	case ActionAssignRoles:
		payload, err = decodePayload[AssignRolesPayload](env.Payload)
	case ActionBulkImportPodData:
		payload, err = decodePayload[[]PodImportRow](env.Payload)
	case ActionBulkDeletePodAssignments:
		payload, err = decodePayload[PeriodPayload](env.Payload)
	case ActionAddAssessment:
		payload, err = decodePayload[models.AssessmentInput](env.Payload)
	case ActionUpdatePodStage:
		payload, err = decodePayload[PodStagePayload](env.Payload)
	case ActionAddTeacherGrade:
		payload, err = decodePayload[TeacherGradePayload](env.Payload)
	case ActionSetCurrentPeriod:
		payload, err = decodePayload[int](env.Payload)
	case ActionSetCurrentPod:
		payload, err = decodePayload[*string](env.Payload)
	case ActionResetAllData, ActionResetAssessments:
	default:
	}
	if err != nil {
		return Action{}, fmt.Errorf("%w: %s payload: %v", ErrInvalidAction, env.Type, err)
	}

	return Action{Type: env.Type, Payload: payload}, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}

// Subject returns the entity type and identifier an action touches, for journaling.
func (a Action) Subject() (entityType string, entityID string) {
	switch p := a.Payload.(type) {
	case UpdateStudentPayload:
		return "student", p.ID
	case StudentRef:
		return "student", p.StudentID
	case HomeroomPayload:
		return "student", p.StudentID
	case AssignPodPayload:
		return "student", p.StudentID
	case AssignRolesPayload:
		return "student", p.StudentID
	case TeacherGradePayload:
		return "teacher_grade", p.StudentID
	case PodStagePayload:
		return "pod", p.PodKey
	case PeriodPayload:
		return "period", fmt.Sprint(p.Period)
	case models.AssessmentInput:
		return "assessment", p.AssesseeID
	case models.StudentInput:
		return "student", p.ID
	case []models.StudentInput:
		return "roster", ""
	case []PodImportRow:
		return "roster", ""
	}
	return "state", ""
}
