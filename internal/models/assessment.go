package models

// Assessment is an immutable score record one student submits about another
// (or about themselves when IsSelfEval is set).
type Assessment struct {
	ID            string         `json:"id"`
	AssessorID    string         `json:"assessorId"`
	AssesseeID    string         `json:"assesseeId"`
	PodID         string         `json:"podId"`
	RoleScores    map[string]int `json:"roleScores"`
	GeneralScores map[string]int `json:"generalScores"`
	Comments      string         `json:"comments"`
	Timestamp     int64          `json:"timestamp"`
	IsSelfEval    bool           `json:"isSelfEval"`
	AssesseeRoles []string       `json:"assesseeRoles,omitempty"`
}

// AssessmentInput is the caller-supplied part of an assessment; the reducer
// assigns the identity and timestamp.
type AssessmentInput struct {
	AssessorID    string         `json:"assessorId"`
	AssesseeID    string         `json:"assesseeId"`
	PodID         string         `json:"podId"`
	RoleScores    map[string]int `json:"roleScores"`
	GeneralScores map[string]int `json:"generalScores"`
	Comments      string         `json:"comments"`
	IsSelfEval    bool           `json:"isSelfEval"`
	AssesseeRoles []string       `json:"assesseeRoles,omitempty"`
}

// TeacherGrade holds the teacher's engagement and activity marks for a student.
type TeacherGrade struct {
	Engagement float64 `json:"engagement"`
	Activity   float64 `json:"activity"`
	Comments   string  `json:"comments,omitempty"`
}
