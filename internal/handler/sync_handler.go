package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

// SnapshotMessage is the frame pushed to live sync clients.
type SnapshotMessage struct {
	Type     string          `json:"type"`
	Revision int64           `json:"revision"`
	State    models.AppState `json:"state"`
}

// SyncHandler pushes every new snapshot to connected clients over SSE or
// WebSocket.
type SyncHandler struct {
	store     *state.Store
	keepAlive time.Duration
	logger    zerolog.Logger
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(store *state.Store, keepAlive time.Duration, logger zerolog.Logger) *SyncHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &SyncHandler{
		store:     store,
		keepAlive: keepAlive,
		logger:    logger.With().Str("component", "sync_handler").Logger(),
	}
}

// Register binds the stream and websocket routes.
func (h *SyncHandler) Register(router fiber.Router) {
	router.Get("/stream", h.stream)

	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_ctx", requestContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *SyncHandler) stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))
	updates, stop := h.store.Watch()
	initial := h.store.State()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			stop()
			cancel()
		}()

		if err := writeSnapshotEvent(w, initial); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				if err := writeSnapshotEvent(w, snapshot); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write snapshot event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write sync keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *SyncHandler) handleConnection(conn *websocket.Conn) {
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	updates, stop := h.store.Watch()
	defer stop()

	// Inbound frames are ignored; a read error means the peer went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info().Msg("sync websocket connected")
	defer h.logger.Info().Msg("sync websocket disconnected")

	if err := conn.WriteJSON(newSnapshotMessage(h.store.State())); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(newSnapshotMessage(snapshot)); err != nil {
				h.logger.Debug().Err(err).Msg("failed to write snapshot frame")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func newSnapshotMessage(snapshot models.AppState) SnapshotMessage {
	return SnapshotMessage{Type: "snapshot", Revision: snapshot.Revision, State: snapshot}
}

func writeSnapshotEvent(w *bufio.Writer, snapshot models.AppState) error {
	payload, err := json.Marshal(newSnapshotMessage(snapshot))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: snapshot\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\n", snapshot.Revision); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
