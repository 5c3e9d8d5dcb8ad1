package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/observability"
	"github.com/noah-isme/pod-grading-api/internal/repository"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

const (
	backendLocal  = "local"
	backendRemote = "remote"

	handshakeInitialBackoff = time.Second
	handshakeMaxBackoff     = 30 * time.Second
)

// SnapshotService saves and loads the application snapshot and relays
// snapshots pushed by other nodes.
type SnapshotService interface {
	Save(ctx context.Context, snapshot models.AppState)
	Load(ctx context.Context) models.AppState
	Subscribe(cb func(models.AppState)) func()
	RemoteEnabled() bool
	Start(ctx context.Context)
}

// SnapshotConfig names where snapshots live.
type SnapshotConfig struct {
	Slot      string
	Channel   string
	ClientTTL time.Duration
}

// SnapshotBackends groups the stores a SnapshotService writes to. Remote is
// optional; Redis and NATS are only used together with Remote.
type SnapshotBackends struct {
	Local  repository.SnapshotRepository
	Remote repository.SnapshotRepository
	Redis  *redis.Client
	NATS   *nats.Conn
}

type snapshotService struct {
	slot        string
	local       repository.SnapshotRepository
	remote      repository.SnapshotRepository
	redis       *redis.Client
	cacheKey    string
	redisStream string
	nats        *nats.Conn
	natsSubject string
	identity    *IdentityHandshake
	reducer     *state.Reducer
	logger      zerolog.Logger
	tracer      trace.Tracer
	subscribers *snapshotBroker
	nodeID      string
}

type snapshotEvent struct {
	Source   string          `json:"source"`
	Slot     string          `json:"slot"`
	Revision int64           `json:"revision"`
	Document json.RawMessage `json:"document"`
	SentAt   time.Time       `json:"sent_at"`
}

// NewSnapshotService constructs the persistence adapter.
func NewSnapshotService(cfg SnapshotConfig, backends SnapshotBackends, reducer *state.Reducer, logger zerolog.Logger) SnapshotService {
	if reducer == nil {
		reducer = state.NewReducer()
	}

	svc := &snapshotService{
		slot:        cfg.Slot,
		local:       backends.Local,
		remote:      backends.Remote,
		reducer:     reducer,
		logger:      logger.With().Str("component", "snapshot_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/pod-grading-api/internal/service/snapshot"),
		subscribers: &snapshotBroker{subscribers: make(map[*snapshotSubscription]struct{})},
		nodeID:      uuid.NewString(),
	}

	if backends.Remote != nil {
		svc.redis = backends.Redis
		svc.nats = backends.NATS
		if cfg.Channel != "" {
			svc.cacheKey = fmt.Sprintf("%s:snapshot:%s", cfg.Channel, cfg.Slot)
			svc.redisStream = cfg.Channel + ":snapshots"
			svc.natsSubject = strings.ReplaceAll(cfg.Channel, ":", ".") + ".snapshots"
		}
		svc.identity = NewIdentityHandshake(backends.Remote.Ping, backends.Redis, cfg.Channel, cfg.ClientTTL, logger)
	}

	return svc
}

func (s *snapshotService) RemoteEnabled() bool {
	return s.remote != nil
}

// Start consumes pushes from the broadcast transports until ctx is done.
func (s *snapshotService) Start(ctx context.Context) {
	if !s.RemoteEnabled() {
		return
	}
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Save writes the snapshot to the remote store, falling back to the local
// store when the remote write fails. Errors are logged, never returned.
func (s *snapshotService) Save(ctx context.Context, snapshot models.AppState) {
	spanCtx, span := s.tracer.Start(ctx, "snapshot.save", trace.WithAttributes(
		attribute.String("snapshot.slot", s.slot),
		attribute.Int64("snapshot.revision", snapshot.Revision),
	))
	defer span.End()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Int64("revision", snapshot.Revision).Msg("failed to serialise snapshot")
		observability.SnapshotSavesTotal().WithLabelValues(backendLocal, "error").Inc()
		return
	}

	if s.RemoteEnabled() {
		err := s.saveRemote(spanCtx, snapshot, payload)
		if err == nil {
			observability.SnapshotSavesTotal().WithLabelValues(backendRemote, "success").Inc()
			return
		}
		span.RecordError(err)
		observability.SnapshotSavesTotal().WithLabelValues(backendRemote, "error").Inc()
		s.logger.Warn().Err(err).Int64("revision", snapshot.Revision).Msg("remote save failed, falling back to local store")
	}

	if s.local == nil {
		s.logger.Error().Int64("revision", snapshot.Revision).Msg("no local store configured, snapshot not persisted")
		return
	}
	if err := s.local.Put(spanCtx, newSnapshotDocument(s.slot, snapshot, payload)); err != nil {
		span.RecordError(err)
		observability.SnapshotSavesTotal().WithLabelValues(backendLocal, "error").Inc()
		s.logger.Error().Err(err).Int64("revision", snapshot.Revision).Msg("local save failed")
		return
	}
	observability.SnapshotSavesTotal().WithLabelValues(backendLocal, "success").Inc()
}

func (s *snapshotService) saveRemote(ctx context.Context, snapshot models.AppState, payload []byte) error {
	if _, err := s.identity.Ensure(ctx); err != nil {
		return err
	}
	if err := s.remote.Put(ctx, newSnapshotDocument(s.slot, snapshot, payload)); err != nil {
		return fmt.Errorf("write remote snapshot: %w", err)
	}

	if s.redis != nil && s.cacheKey != "" {
		if err := s.redis.Set(ctx, s.cacheKey, payload, 0).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to refresh snapshot cache")
		}
	}
	if err := s.publish(ctx, snapshot.Revision, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish snapshot push")
	}
	return nil
}

// Load reads the stored snapshot. Missing or unreadable documents yield a
// fresh initial state; legacy documents are upgraded and written back once.
func (s *snapshotService) Load(ctx context.Context) models.AppState {
	spanCtx, span := s.tracer.Start(ctx, "snapshot.load", trace.WithAttributes(
		attribute.String("snapshot.slot", s.slot),
	))
	defer span.End()

	payload, backend, err := s.read(spanCtx)
	if err != nil {
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			span.RecordError(err)
		}
		s.logger.Info().Err(err).Msg("no stored snapshot, starting from initial state")
		return s.reducer.Initial()
	}

	snapshot, from, err := state.Migrate(payload)
	if err != nil {
		span.RecordError(err)
		observability.SnapshotLoadsTotal().WithLabelValues(backend, "malformed").Inc()
		s.logger.Warn().Err(err).Str("backend", backend).Msg("stored snapshot unreadable, starting from initial state")
		return s.reducer.Initial()
	}
	observability.SnapshotLoadsTotal().WithLabelValues(backend, "success").Inc()

	if from < models.CurrentSchemaVersion {
		s.logger.Info().
			Int("from_version", from).
			Int("to_version", models.CurrentSchemaVersion).
			Msg("migrated stored snapshot")
		s.Save(spanCtx, snapshot)
	}

	span.SetAttributes(attribute.Int64("snapshot.revision", snapshot.Revision))
	return snapshot
}

func (s *snapshotService) read(ctx context.Context) ([]byte, string, error) {
	if s.RemoteEnabled() {
		payload, err := s.readRemote(ctx)
		if err == nil {
			return payload, backendRemote, nil
		}
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			observability.SnapshotLoadsTotal().WithLabelValues(backendRemote, "not_found").Inc()
		} else {
			observability.SnapshotLoadsTotal().WithLabelValues(backendRemote, "error").Inc()
			s.logger.Warn().Err(err).Msg("remote load failed, falling back to local store")
		}
	}

	if s.local == nil {
		return nil, backendLocal, repository.ErrSnapshotNotFound
	}
	doc, err := s.local.Get(ctx, s.slot)
	if err != nil {
		result := "error"
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			result = "not_found"
		}
		observability.SnapshotLoadsTotal().WithLabelValues(backendLocal, result).Inc()
		return nil, backendLocal, err
	}
	return doc.Document, backendLocal, nil
}

func (s *snapshotService) readRemote(ctx context.Context) ([]byte, error) {
	if _, err := s.identity.Ensure(ctx); err != nil {
		return nil, err
	}

	if s.redis != nil && s.cacheKey != "" {
		cached, err := s.redis.Get(ctx, s.cacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("snapshot cache unavailable")
		}
	}

	doc, err := s.remote.Get(ctx, s.slot)
	if err != nil {
		return nil, err
	}
	return doc.Document, nil
}

// Subscribe registers cb for snapshots pushed by other nodes. The returned
// cancel function is idempotent; once it returns cb is never invoked again.
// cancel must not be called from inside cb.
func (s *snapshotService) Subscribe(cb func(models.AppState)) func() {
	if !s.RemoteEnabled() || cb == nil {
		return func() {}
	}

	sub := &snapshotSubscription{cb: cb}
	ctx, stop := context.WithCancel(context.Background())

	go func() {
		backoff := handshakeInitialBackoff
		for {
			_, err := s.identity.Ensure(ctx)
			if err == nil {
				break
			}
			s.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("subscription handshake failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > handshakeMaxBackoff {
				backoff = handshakeMaxBackoff
			}
		}

		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.closed {
			return
		}
		s.subscribers.add(sub)
		observability.SyncSubscribersActive().Inc()
		sub.registered = true
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			sub.mu.Lock()
			sub.closed = true
			registered := sub.registered
			sub.mu.Unlock()
			if registered {
				s.subscribers.remove(sub)
				observability.SyncSubscribersActive().Dec()
			}
		})
	}
}

func (s *snapshotService) publish(ctx context.Context, revision int64, payload []byte) error {
	event := snapshotEvent{
		Source:   s.nodeID,
		Slot:     s.slot,
		Revision: revision,
		Document: payload,
		SentAt:   time.Now().UTC(),
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, encoded).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, encoded); err != nil {
			return err
		}
	}

	return nil
}

func (s *snapshotService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("snapshot redis subscription closed")
			return
		}
		s.handleEvent("redis", []byte(msg.Payload))
	}
}

func (s *snapshotService) consumeNATS(ctx context.Context) {
	// Every node needs every push, so this is a plain subscription rather
	// than a queue group.
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent("nats", msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats snapshot subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain snapshot nats subscription")
		}
	}()
}

func (s *snapshotService) handleEvent(transport string, payload []byte) {
	var event snapshotEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		observability.SyncEventsTotal().WithLabelValues(transport, "invalid").Inc()
		s.logger.Warn().Err(err).Str("transport", transport).Msg("invalid snapshot event payload")
		return
	}

	if event.Source == s.nodeID {
		observability.SyncEventsTotal().WithLabelValues(transport, "echo").Inc()
		return
	}
	if event.Slot != "" && event.Slot != s.slot {
		observability.SyncEventsTotal().WithLabelValues(transport, "ignored").Inc()
		return
	}

	snapshot, _, err := state.Migrate(event.Document)
	if err != nil {
		observability.SyncEventsTotal().WithLabelValues(transport, "invalid").Inc()
		s.logger.Warn().Err(err).Str("transport", transport).Msg("pushed snapshot unreadable")
		return
	}

	observability.SyncEventsTotal().WithLabelValues(transport, "delivered").Inc()
	s.subscribers.broadcast(snapshot)
}

func newSnapshotDocument(slot string, snapshot models.AppState, payload []byte) *models.SnapshotDocument {
	return &models.SnapshotDocument{
		Slot:          slot,
		SchemaVersion: snapshot.SchemaVersion,
		Revision:      snapshot.Revision,
		Document:      payload,
		UpdatedAt:     time.Now().UTC(),
	}
}

type snapshotSubscription struct {
	mu         sync.Mutex
	cb         func(models.AppState)
	closed     bool
	registered bool
}

// deliver holds the subscription lock for the duration of cb so that a
// concurrent cancel waits for an in-flight callback.
func (sub *snapshotSubscription) deliver(snapshot models.AppState) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.cb(snapshot)
}

type snapshotBroker struct {
	mu          sync.RWMutex
	subscribers map[*snapshotSubscription]struct{}
}

func (b *snapshotBroker) add(sub *snapshotSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[sub] = struct{}{}
}

func (b *snapshotBroker) remove(sub *snapshotSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
}

func (b *snapshotBroker) broadcast(snapshot models.AppState) {
	b.mu.RLock()
	targets := make([]*snapshotSubscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(snapshot)
	}
}
