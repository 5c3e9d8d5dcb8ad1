package dto

// AssessmentCreateRequest submits a peer or self assessment.
type AssessmentCreateRequest struct {
	AssessorID    string         `json:"assessor_id" validate:"required"`
	AssesseeID    string         `json:"assessee_id" validate:"required"`
	PodID         string         `json:"pod_id" validate:"required"`
	RoleScores    map[string]int `json:"role_scores" validate:"omitempty,dive,keys,required,endkeys,min=1,max=5"`
	GeneralScores map[string]int `json:"general_scores" validate:"omitempty,dive,keys,required,endkeys,min=1,max=5"`
	Comments      string         `json:"comments" validate:"max=4000"`
}

// AssessmentListRequest filters assessments by participant.
type AssessmentListRequest struct {
	AssesseeID string
	AssessorID string
	PodID      string
}

// TeacherGradeRequest records the teacher's marks for a student.
type TeacherGradeRequest struct {
	Engagement *float64 `json:"engagement" validate:"required,min=0,max=5,halfstep"`
	Activity   *float64 `json:"activity" validate:"required,min=0,max=5,halfstep"`
	Comments   string   `json:"comments" validate:"max=4000"`
}

// AdminVerifyRequest checks the shared admin passcode.
type AdminVerifyRequest struct {
	Passcode string `json:"passcode" validate:"required,max=128"`
}

// AdminVerifyResponse tells the client whether to show admin views.
type AdminVerifyResponse struct {
	AdminView bool `json:"admin_view"`
}
