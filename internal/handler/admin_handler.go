package handler

import (
	"crypto/subtle"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// AdminHandler checks the shared admin passcode. A match only tells the
// client to show admin views; it grants no permissions.
type AdminHandler struct {
	passcode  string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(passcode string, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		passcode:  passcode,
		validator: validate,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches admin routes to the router group.
func (h *AdminHandler) Register(router fiber.Router, guards Guards) {
	router.Post("/verify", guards.throttled(h.verify)...)
}

func (h *AdminHandler) verify(c *fiber.Ctx) error {
	var payload dto.AdminVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "passcode is required")
		}
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if h.passcode == "" {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "admin passcode not configured")
	}

	ok := subtle.ConstantTimeCompare([]byte(payload.Passcode), []byte(h.passcode)) == 1
	if !ok {
		requestLogger(h.logger, c).Info().Str("ip", c.IP()).Msg("admin passcode rejected")
		return utils.SendError(c, fiber.StatusUnauthorized, "incorrect passcode")
	}

	return utils.SendSuccess(c, "admin view enabled", dto.AdminVerifyResponse{AdminView: true})
}
