package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// StudentHandler wires roster HTTP routes.
type StudentHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.RosterService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router, guards Guards) {
	router.Get("", h.list)
	router.Post("", guards.write(h.create))
	router.Get("/:id", h.get)
	router.Patch("/:id", guards.write(h.update))
	router.Delete("/:id", guards.teacher(h.delete))
	router.Put("/:id/homeroom", guards.write(h.changeHomeroom))
	router.Put("/:id/pod", guards.write(h.moveToPod))
	router.Delete("/:id/pod", guards.write(h.removeFromPod))
	router.Put("/:id/roles", guards.write(h.assignRoles))
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	period, err := parseOptionalPeriod(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	students := h.service.ListStudents(period, c.Query("search"))
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	student, err := h.service.GetStudent(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.CreateStudent(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.UpdateStudent(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteStudent(requestContext(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *StudentHandler) changeHomeroom(c *fiber.Ctx) error {
	var payload dto.HomeroomUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.ChangeHomeroom(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "homeroom updated", student)
}

func (h *StudentHandler) moveToPod(c *fiber.Ctx) error {
	var payload dto.PodAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.MoveToPod(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student assigned to pod", student)
}

func (h *StudentHandler) removeFromPod(c *fiber.Ctx) error {
	student, err := h.service.RemoveFromPod(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student removed from pod", student)
}

func (h *StudentHandler) assignRoles(c *fiber.Ctx) error {
	var payload dto.RolesAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.AssignRoles(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "roles assigned", student)
}
