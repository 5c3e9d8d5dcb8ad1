package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/grading"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

var (
	// ErrPodNotFound indicates the pod key does not exist.
	ErrPodNotFound = errors.New("pod not found")
	// ErrInvalidPodKey indicates a key that is not "{period}_{podNumber}".
	ErrInvalidPodKey = errors.New("invalid pod key")
)

// RosterService manages students, pods and role assignments.
type RosterService interface {
	ListStudents(period *int, search string) []models.Student
	GetStudent(id string) (models.Student, error)
	CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, req dto.StudentUpdateRequest) (models.Student, error)
	ChangeHomeroom(ctx context.Context, id string, req dto.HomeroomUpdateRequest) (models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
	MoveToPod(ctx context.Context, id string, req dto.PodAssignRequest) (models.Student, error)
	RemoveFromPod(ctx context.Context, id string) (models.Student, error)
	AssignRoles(ctx context.Context, id string, req dto.RolesAssignRequest) (models.Student, error)
	ListPods(period int) []models.Pod
	GetPod(key string) (dto.PodDetailResponse, error)
	SetPodStage(ctx context.Context, key string, req dto.PodStageRequest) (models.Pod, error)
	PodCompletion(key string) (grading.Completion, error)
	ClearPeriod(ctx context.Context, period int) dto.BulkDeleteResponse
}

type rosterService struct {
	store     *state.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRosterService constructs the roster service on top of store.
func NewRosterService(store *state.Store, validate *validator.Validate, logger zerolog.Logger) RosterService {
	return &rosterService{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) ListStudents(period *int, search string) []models.Student {
	snapshot := s.store.State()
	var students []models.Student
	if period != nil {
		students = state.StudentsByPeriod(snapshot, *period)
	} else {
		students = append([]models.Student(nil), snapshot.Students...)
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return students
	}
	filtered := make([]models.Student, 0, len(students))
	for _, student := range students {
		if strings.Contains(strings.ToLower(student.FullName()), needle) {
			filtered = append(filtered, student)
		}
	}
	return filtered
}

func (s *rosterService) GetStudent(id string) (models.Student, error) {
	return state.RequireStudent(s.store.State(), id)
}

func (s *rosterService) CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}

	next, applied := s.store.Apply(ctx, state.AddStudent(models.StudentInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Homeroom:  strings.TrimSpace(req.Homeroom),
	}))
	if !applied || len(next.Students) == 0 {
		return models.Student{}, errors.New("student was not added")
	}

	created := next.Students[len(next.Students)-1]
	s.logger.Info().Str("student_id", created.ID).Str("homeroom", created.Homeroom).Msg("student added")
	return created, nil
}

func (s *rosterService) UpdateStudent(ctx context.Context, id string, req dto.StudentUpdateRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}
	if _, err := s.GetStudent(id); err != nil {
		return models.Student{}, err
	}

	next := s.store.Dispatch(ctx, state.UpdateStudent(id, req.Patch()))
	return state.RequireStudent(next, id)
}

func (s *rosterService) ChangeHomeroom(ctx context.Context, id string, req dto.HomeroomUpdateRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}
	if _, err := s.GetStudent(id); err != nil {
		return models.Student{}, err
	}

	next := s.store.Dispatch(ctx, state.UpdateStudentHomeroom(id, strings.TrimSpace(req.Homeroom)))
	return state.RequireStudent(next, id)
}

func (s *rosterService) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.GetStudent(id); err != nil {
		return err
	}
	s.store.Dispatch(ctx, state.DeleteStudent(id))
	return nil
}

// MoveToPod is the two-step reassignment: leave the current pod, then join
// the requested one.
func (s *rosterService) MoveToPod(ctx context.Context, id string, req dto.PodAssignRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}
	student, err := s.GetStudent(id)
	if err != nil {
		return models.Student{}, err
	}

	if student.InPod() {
		s.store.Dispatch(ctx, state.RemoveFromPod(id))
	}
	next := s.store.Dispatch(ctx, state.AssignPod(id, req.Period, req.PodNumber))
	return state.RequireStudent(next, id)
}

func (s *rosterService) RemoveFromPod(ctx context.Context, id string) (models.Student, error) {
	if _, err := s.GetStudent(id); err != nil {
		return models.Student{}, err
	}
	next := s.store.Dispatch(ctx, state.RemoveFromPod(id))
	return state.RequireStudent(next, id)
}

func (s *rosterService) AssignRoles(ctx context.Context, id string, req dto.RolesAssignRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}
	if _, err := s.GetStudent(id); err != nil {
		return models.Student{}, err
	}

	next := s.store.Dispatch(ctx, state.AssignRoles(id, req.Roles, req.SharedRoles))
	return state.RequireStudent(next, id)
}

func (s *rosterService) ListPods(period int) []models.Pod {
	return state.PodsByPeriod(s.store.State(), period)
}

func (s *rosterService) GetPod(key string) (dto.PodDetailResponse, error) {
	snapshot := s.store.State()
	pod, ok := snapshot.Pods[key]
	if !ok {
		return dto.PodDetailResponse{}, ErrPodNotFound
	}
	return dto.PodDetailResponse{Pod: pod, Members: state.PodMembers(snapshot, key)}, nil
}

func (s *rosterService) SetPodStage(ctx context.Context, key string, req dto.PodStageRequest) (models.Pod, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Pod{}, err
	}
	if _, _, ok := models.ParsePodKey(key); !ok {
		return models.Pod{}, ErrInvalidPodKey
	}

	next := s.store.Dispatch(ctx, state.UpdatePodStage(key, models.PodStage(req.Stage)))
	pod, ok := next.Pods[key]
	if !ok {
		return models.Pod{}, ErrPodNotFound
	}
	return pod, nil
}

func (s *rosterService) PodCompletion(key string) (grading.Completion, error) {
	snapshot := s.store.State()
	if _, ok := snapshot.Pods[key]; !ok {
		return grading.Completion{}, ErrPodNotFound
	}
	return grading.PodCompletion(snapshot, key), nil
}

func (s *rosterService) ClearPeriod(ctx context.Context, period int) dto.BulkDeleteResponse {
	before := s.store.State()
	podsBefore := len(state.PodsByPeriod(before, period))
	freed := 0
	for _, student := range state.StudentsByPeriod(before, period) {
		if student.InPod() {
			freed++
		}
	}

	s.store.Dispatch(ctx, state.BulkDeletePodAssignments(period))
	s.logger.Info().Int("period", period).Int("pods", podsBefore).Int("students", freed).Msg("period pod assignments cleared")
	return dto.BulkDeleteResponse{Period: period, PodsRemoved: podsBefore, StudentsFreed: freed}
}
