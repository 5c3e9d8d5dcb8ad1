package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

// ErrAssessmentRejected indicates the reducer did not record the assessment.
var ErrAssessmentRejected = errors.New("assessment was not recorded")

// AssessmentService records peer, self and teacher evaluations.
type AssessmentService interface {
	Submit(ctx context.Context, req dto.AssessmentCreateRequest) (models.Assessment, error)
	List(req dto.AssessmentListRequest) []models.Assessment
	SetTeacherGrade(ctx context.Context, studentID string, req dto.TeacherGradeRequest) (models.TeacherGrade, error)
	ResetAssessments(ctx context.Context) models.AppState
	ResetAll(ctx context.Context) models.AppState
}

type assessmentService struct {
	store     *state.Store
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(store *state.Store, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		store:     store,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/pod-grading-api/internal/service/assessment"),
	}
}

func (s *assessmentService) Submit(ctx context.Context, req dto.AssessmentCreateRequest) (models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Assessment{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assessments.submit", trace.WithAttributes(
		attribute.String("assessment.pod_id", req.PodID),
		attribute.Bool("assessment.self", req.AssessorID == req.AssesseeID),
	))
	defer span.End()

	snapshot := s.store.State()
	if _, err := state.RequireStudent(snapshot, req.AssessorID); err != nil {
		return models.Assessment{}, err
	}
	assessee, err := state.RequireStudent(snapshot, req.AssesseeID)
	if err != nil {
		return models.Assessment{}, err
	}

	input := models.AssessmentInput{
		AssessorID:    req.AssessorID,
		AssesseeID:    req.AssesseeID,
		PodID:         req.PodID,
		RoleScores:    req.RoleScores,
		GeneralScores: req.GeneralScores,
		Comments:      strings.TrimSpace(s.sanitizer.Sanitize(req.Comments)),
		IsSelfEval:    req.AssessorID == req.AssesseeID,
		AssesseeRoles: append([]string(nil), assessee.Roles...),
	}

	next, applied := s.store.Apply(spanCtx, state.AddAssessment(input))
	if !applied || len(next.Assessments) == 0 {
		span.RecordError(ErrAssessmentRejected)
		return models.Assessment{}, ErrAssessmentRejected
	}

	recorded := next.Assessments[len(next.Assessments)-1]
	s.logger.Debug().
		Str("assessment_id", recorded.ID).
		Str("pod_id", recorded.PodID).
		Bool("self_eval", recorded.IsSelfEval).
		Msg("assessment recorded")
	return recorded, nil
}

func (s *assessmentService) List(req dto.AssessmentListRequest) []models.Assessment {
	snapshot := s.store.State()
	candidates := snapshot.Assessments
	switch {
	case req.AssesseeID != "":
		candidates = state.AssessmentsReceived(snapshot, req.AssesseeID)
	case req.AssessorID != "":
		candidates = state.AssessmentsGiven(snapshot, req.AssessorID)
	}

	out := make([]models.Assessment, 0, len(candidates))
	for _, a := range candidates {
		if req.AssessorID != "" && a.AssessorID != req.AssessorID {
			continue
		}
		if req.PodID != "" && a.PodID != req.PodID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *assessmentService) SetTeacherGrade(ctx context.Context, studentID string, req dto.TeacherGradeRequest) (models.TeacherGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.TeacherGrade{}, err
	}
	if _, err := state.RequireStudent(s.store.State(), studentID); err != nil {
		return models.TeacherGrade{}, err
	}

	grade := models.TeacherGrade{
		Engagement: *req.Engagement,
		Activity:   *req.Activity,
		Comments:   strings.TrimSpace(s.sanitizer.Sanitize(req.Comments)),
	}
	next := s.store.Dispatch(ctx, state.AddTeacherGrade(studentID, grade))
	return next.TeacherGrades[studentID], nil
}

func (s *assessmentService) ResetAssessments(ctx context.Context) models.AppState {
	next := s.store.Dispatch(ctx, state.ResetAssessments())
	s.logger.Warn().Int64("revision", next.Revision).Msg("assessments and teacher grades cleared")
	return next
}

func (s *assessmentService) ResetAll(ctx context.Context) models.AppState {
	next := s.store.Dispatch(ctx, state.ResetAllData())
	s.logger.Warn().Int64("revision", next.Revision).Msg("application data reset to seed roster")
	return next
}
