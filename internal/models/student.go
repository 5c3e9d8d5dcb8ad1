package models

// Student represents a learner on the class roster.
type Student struct {
	ID          string              `json:"id"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Homeroom    string              `json:"homeroom"`
	Period      *int                `json:"period"`
	PeriodName  string              `json:"periodName"`
	PodNumber   *int                `json:"podNumber"`
	Roles       []string            `json:"roles"`
	SharedRoles map[string][]string `json:"sharedRoles"`
}

// UnassignedPeriodName labels students whose homeroom has no period mapping.
const UnassignedPeriodName = "Unassigned"

// FullName joins first and last name for display and searching.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// InPod reports whether the student currently holds a pod assignment.
func (s Student) InPod() bool {
	return s.PodNumber != nil
}

// PodKey returns the key of the pod the student belongs to, or an empty string.
func (s Student) PodKey() string {
	if s.PodNumber == nil || s.Period == nil {
		return ""
	}
	return PodKey(*s.Period, *s.PodNumber)
}

// HasRole reports whether the student holds the named role.
func (s Student) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// StudentInput is a raw roster record before identity and period derivation.
type StudentInput struct {
	ID          string              `json:"id,omitempty"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Homeroom    string              `json:"homeroom"`
	PodNumber   *int                `json:"podNumber,omitempty"`
	Roles       []string            `json:"roles,omitempty"`
	SharedRoles map[string][]string `json:"sharedRoles,omitempty"`
}

// StudentPatch carries the optional fields of a shallow student update.
type StudentPatch struct {
	FirstName   *string             `json:"firstName,omitempty"`
	LastName    *string             `json:"lastName,omitempty"`
	Homeroom    *string             `json:"homeroom,omitempty"`
	PodNumber   *int                `json:"podNumber,omitempty"`
	Roles       []string            `json:"roles,omitempty"`
	SharedRoles map[string][]string `json:"sharedRoles,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
