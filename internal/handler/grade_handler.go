package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// GradeHandler serves computed grades and the dashboard.
type GradeHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.ReportService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register binds the grade routes under the API root.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/grades/students/:id", h.student)
	router.Get("/grades/periods/:period", h.period)
	router.Get("/dashboard", h.dashboard)
}

func (h *GradeHandler) student(c *fiber.Ctx) error {
	breakdown, err := h.service.StudentBreakdown(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grade retrieved", breakdown)
}

func (h *GradeHandler) period(c *fiber.Ctx) error {
	period, err := strconv.Atoi(c.Params("period"))
	if err != nil || period <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid period")
	}

	report := h.service.PeriodReport(requestContext(c), period, c.Query("search"))
	return utils.SendSuccess(c, "grade report retrieved", report)
}

func (h *GradeHandler) dashboard(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "dashboard retrieved", h.service.Dashboard())
}
