package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// AssessmentHandler wires assessment, teacher grade and reset routes.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes under the API root.
func (h *AssessmentHandler) Register(router fiber.Router, guards Guards) {
	router.Post("/assessments", guards.throttled(guards.write(h.submit))...)
	router.Get("/assessments", h.list)
	router.Put("/teacher-grades/:studentId", guards.teacher(h.teacherGrade))
	router.Post("/reset/all", guards.teacher(h.resetAll))
	router.Post("/reset/assessments", guards.teacher(h.resetAssessments))
}

func (h *AssessmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Submit(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment recorded", assessment)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	assessments := h.service.List(dto.AssessmentListRequest{
		AssesseeID: c.Query("assessee_id"),
		AssessorID: c.Query("assessor_id"),
		PodID:      c.Query("pod_id"),
	})
	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) teacherGrade(c *fiber.Ctx) error {
	var payload dto.TeacherGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.SetTeacherGrade(requestContext(c), c.Params("studentId"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "teacher grade saved", grade)
}

func (h *AssessmentHandler) resetAll(c *fiber.Ctx) error {
	next := h.service.ResetAll(requestContext(c))
	requestLogger(h.logger, c).Warn().Str("user_id", userIDStringFromContext(c)).Msg("all data reset")
	return utils.SendSuccess(c, "data reset", fiber.Map{"revision": next.Revision, "students": len(next.Students)})
}

func (h *AssessmentHandler) resetAssessments(c *fiber.Ctx) error {
	next := h.service.ResetAssessments(requestContext(c))
	requestLogger(h.logger, c).Warn().Str("user_id", userIDStringFromContext(c)).Msg("assessments reset")
	return utils.SendSuccess(c, "assessments reset", fiber.Map{"revision": next.Revision})
}
