package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// PodHandler wires pod HTTP routes.
type PodHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewPodHandler constructs the handler.
func NewPodHandler(service service.RosterService, logger zerolog.Logger) *PodHandler {
	return &PodHandler{
		service: service,
		logger:  logger.With().Str("component", "pod_handler").Logger(),
	}
}

// Register attaches pod endpoints to the router group.
func (h *PodHandler) Register(router fiber.Router, guards Guards) {
	router.Get("", h.list)
	router.Delete("", guards.teacher(h.clearPeriod))
	router.Get("/:key", h.get)
	router.Patch("/:key/stage", guards.write(h.setStage))
	router.Get("/:key/completion", h.completion)
}

func (h *PodHandler) list(c *fiber.Ctx) error {
	period, err := parseOptionalPeriod(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if period == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "period is required")
	}
	return utils.SendSuccess(c, "pods retrieved", h.service.ListPods(*period))
}

func (h *PodHandler) get(c *fiber.Ctx) error {
	pod, err := h.service.GetPod(c.Params("key"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pod retrieved", pod)
}

func (h *PodHandler) setStage(c *fiber.Ctx) error {
	var payload dto.PodStageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pod, err := h.service.SetPodStage(requestContext(c), c.Params("key"), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pod stage updated", pod)
}

func (h *PodHandler) completion(c *fiber.Ctx) error {
	completion, err := h.service.PodCompletion(c.Params("key"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pod completion retrieved", completion)
}

func (h *PodHandler) clearPeriod(c *fiber.Ctx) error {
	period, err := parseOptionalPeriod(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if period == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "period is required")
	}

	result := h.service.ClearPeriod(requestContext(c), *period)
	return utils.SendSuccess(c, "pod assignments cleared", result)
}
