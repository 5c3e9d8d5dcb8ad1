package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// IdentityHandshake mints an anonymous client identity before the remote
// document store is used. A successful handshake is kept for the lifetime of
// the process; a failed one is attempted again on the next call.
type IdentityHandshake struct {
	mu       sync.Mutex
	clientID string

	ping    func(ctx context.Context) error
	redis   *redis.Client
	channel string
	ttl     time.Duration
	newID   func() string
	logger  zerolog.Logger
}

// NewIdentityHandshake builds a handshake that pings the remote store and
// registers the client id in Redis when a client is available.
func NewIdentityHandshake(ping func(ctx context.Context) error, redisClient *redis.Client, channel string, ttl time.Duration, logger zerolog.Logger) *IdentityHandshake {
	return &IdentityHandshake{
		ping:    ping,
		redis:   redisClient,
		channel: channel,
		ttl:     ttl,
		newID:   uuid.NewString,
		logger:  logger.With().Str("component", "identity_handshake").Logger(),
	}
}

// Ensure returns the client id, performing the handshake if needed.
func (h *IdentityHandshake) Ensure(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clientID != "" {
		return h.clientID, nil
	}

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			return "", fmt.Errorf("identity handshake: remote store unreachable: %w", err)
		}
	}

	id := h.newID()
	if h.redis != nil {
		key := fmt.Sprintf("%s:clients:%s", h.channel, id)
		registered := time.Now().UTC().Format(time.RFC3339)
		if err := h.redis.Set(ctx, key, registered, h.ttl).Err(); err != nil {
			return "", fmt.Errorf("identity handshake: register client: %w", err)
		}
	}

	h.clientID = id
	h.logger.Info().Str("client_id", id).Msg("anonymous identity established")
	return id, nil
}

// ClientID returns the established id, or an empty string before the first
// successful handshake.
func (h *IdentityHandshake) ClientID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clientID
}
