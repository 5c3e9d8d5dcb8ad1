package models

import (
	"time"

	"gorm.io/datatypes"
)

// CurrentSchemaVersion is the snapshot layout written by this service.
// Version 1 documents carry single role/sharedRole fields per student.
const CurrentSchemaVersion = 2

// AppState is the whole application snapshot. It is treated as immutable:
// every change produces a new value that shares untouched parts with the old one.
type AppState struct {
	SchemaVersion int                     `json:"schemaVersion"`
	Revision      int64                   `json:"revision"`
	Students      []Student               `json:"students"`
	Pods          map[string]Pod          `json:"pods"`
	Assessments   []Assessment            `json:"assessments"`
	TeacherGrades map[string]TeacherGrade `json:"teacherGrades"`
	CurrentPeriod int                     `json:"currentPeriod"`
	CurrentPod    *string                 `json:"currentPod"`
	LastUpdated   int64                   `json:"lastUpdated,omitempty"`
}

// FindStudent returns the student with the given id.
func (s AppState) FindStudent(id string) (Student, int, bool) {
	for i, student := range s.Students {
		if student.ID == id {
			return student, i, true
		}
	}
	return Student{}, -1, false
}

// SnapshotDocument is the stored form of a serialized AppState, one row per slot.
type SnapshotDocument struct {
	Slot          string         `gorm:"primaryKey;size:128" json:"slot"`
	SchemaVersion int            `gorm:"not null;default:0" json:"schema_version"`
	Revision      int64          `gorm:"not null;default:0" json:"revision"`
	Document      datatypes.JSON `gorm:"type:json" json:"document"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName pins the table name across drivers.
func (SnapshotDocument) TableName() string {
	return "snapshot_documents"
}
