package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/middleware"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/state"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// Guards wraps routes that mutate state. Nil members leave routes open.
type Guards struct {
	Write    func(fiber.Handler) fiber.Handler
	Teacher  func(fiber.Handler) fiber.Handler
	Throttle fiber.Handler
}

func (g Guards) write(h fiber.Handler) fiber.Handler {
	if g.Write == nil {
		return h
	}
	return g.Write(h)
}

func (g Guards) teacher(h fiber.Handler) fiber.Handler {
	if g.Teacher == nil {
		return g.write(h)
	}
	return g.Teacher(h)
}

func (g Guards) throttled(h fiber.Handler) []fiber.Handler {
	if g.Throttle == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{g.Throttle, h}
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parseOptionalPeriod returns nil when the period query is absent.
func parseOptionalPeriod(c *fiber.Ctx) (*int, error) {
	value := strings.TrimSpace(c.Query("period"))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return nil, errors.New("invalid period")
	}
	return &parsed, nil
}

func userIDStringFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// respondError maps service and state errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, state.ErrUnknownStudent), errors.Is(err, service.ErrPodNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, state.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidPodKey),
		errors.Is(err, service.ErrMissingColumns),
		errors.Is(err, service.ErrEmptyUpload):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedUpload):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrAssessmentRejected):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrBackupDisabled):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
