package dto

import "github.com/noah-isme/pod-grading-api/internal/models"

// StudentCreateRequest adds a single student to the roster.
type StudentCreateRequest struct {
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Homeroom  string `json:"homeroom" validate:"required,max=16"`
}

// StudentUpdateRequest patches the editable fields of a student.
type StudentUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=64"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=64"`
	Homeroom  *string `json:"homeroom" validate:"omitempty,min=1,max=16"`
	PodNumber *int    `json:"pod_number" validate:"omitempty,min=1,max=99"`
}

// Patch converts the request into a reducer patch.
func (r StudentUpdateRequest) Patch() models.StudentPatch {
	return models.StudentPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Homeroom:  r.Homeroom,
		PodNumber: r.PodNumber,
	}
}

// HomeroomUpdateRequest moves a student to another homeroom.
type HomeroomUpdateRequest struct {
	Homeroom string `json:"homeroom" validate:"required,max=16"`
}

// PodAssignRequest places a student in a pod.
type PodAssignRequest struct {
	Period    int `json:"period" validate:"required,min=1"`
	PodNumber int `json:"pod_number" validate:"required,min=1,max=99"`
}

// RolesAssignRequest replaces a student's roles.
type RolesAssignRequest struct {
	Roles       []string            `json:"roles" validate:"max=4,dive,podrole"`
	SharedRoles map[string][]string `json:"shared_roles" validate:"omitempty,dive,keys,podrole,endkeys,dive,required"`
}

// PodStageRequest updates a pod's progress stage.
type PodStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=not_started in_progress completed"`
}

// PodDetailResponse is a pod with its resolved members.
type PodDetailResponse struct {
	Pod     models.Pod       `json:"pod"`
	Members []models.Student `json:"members"`
}

// BulkDeleteResponse reports a cleared period.
type BulkDeleteResponse struct {
	Period        int `json:"period"`
	PodsRemoved   int `json:"pods_removed"`
	StudentsFreed int `json:"students_freed"`
}
