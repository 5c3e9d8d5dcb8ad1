package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/roster"
	"github.com/noah-isme/pod-grading-api/internal/state"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

// DispatchResponse reports the result of a raw action dispatch.
type DispatchResponse struct {
	Type     state.ActionType `json:"type"`
	Revision int64            `json:"revision"`
	Changed  bool             `json:"changed"`
}

// StateHandler exposes the snapshot, the raw action endpoint and the static
// questionnaire data.
type StateHandler struct {
	store  *state.Store
	logger zerolog.Logger
}

// NewStateHandler constructs the handler.
func NewStateHandler(store *state.Store, logger zerolog.Logger) *StateHandler {
	return &StateHandler{
		store:  store,
		logger: logger.With().Str("component", "state_handler").Logger(),
	}
}

// Register binds the state routes.
func (h *StateHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/state", h.snapshot)
	router.Post("/actions", guards.write(h.dispatch))
	router.Get("/questions", h.questions)
	router.Get("/periods", h.periods)
}

func (h *StateHandler) snapshot(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "state retrieved", h.store.State())
}

func (h *StateHandler) dispatch(c *fiber.Ctx) error {
	action, err := state.DecodeAction(c.Body())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	before := h.store.State().Revision
	next := h.store.Dispatch(requestContext(c), action)

	requestLogger(h.logger, c).Debug().
		Str("action", string(action.Type)).
		Int64("revision", next.Revision).
		Msg("action dispatched")

	return utils.SendSuccess(c, "action dispatched", DispatchResponse{
		Type:     action.Type,
		Revision: next.Revision,
		Changed:  next.Revision != before,
	})
}

func (h *StateHandler) questions(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "questions retrieved", roster.AllQuestions())
}

func (h *StateHandler) periods(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "periods retrieved", roster.Periods())
}
