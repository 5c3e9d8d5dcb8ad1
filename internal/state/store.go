package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/observability"
)

const flushTimeout = 5 * time.Second

// Persister durably stores snapshots. Save must not return errors; failures
// are the persister's to log.
type Persister interface {
	Save(ctx context.Context, snapshot models.AppState)
}

// DispatchHook observes every action that changed the snapshot.
type DispatchHook func(ctx context.Context, action Action, prev, next models.AppState)

// Store owns the current snapshot of the process. Dispatch calls are applied
// one at a time; persistence happens on a background loop that only ever
// keeps the newest pending snapshot.
type Store struct {
	mu      sync.RWMutex
	current models.AppState

	dispatchMu sync.Mutex
	reducer    *Reducer
	persister  Persister
	pending    chan models.AppState
	watchers   *watchBroker
	hooks      []DispatchHook
	now        func() time.Time
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewStore wraps initial in a store. persister may be nil, in which case
// snapshots only live in memory.
func NewStore(initial models.AppState, reducer *Reducer, persister Persister, logger zerolog.Logger) *Store {
	if reducer == nil {
		reducer = NewReducer()
	}
	return &Store{
		current:   Normalize(initial),
		reducer:   reducer,
		persister: persister,
		pending:   make(chan models.AppState, 1),
		watchers:  &watchBroker{subscribers: make(map[chan models.AppState]struct{})},
		now:       time.Now,
		logger:    logger.With().Str("component", "state_store").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/pod-grading-api/internal/state"),
	}
}

// OnDispatch registers a hook; hooks run synchronously after the snapshot
// has been swapped in.
func (s *Store) OnDispatch(hook DispatchHook) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Store) State() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Dispatch applies action and returns the resulting snapshot. It never waits
// for persistence.
func (s *Store) Dispatch(ctx context.Context, action Action) models.AppState {
	next, _ := s.Apply(ctx, action)
	return next
}

// Apply is Dispatch that also reports whether action changed the snapshot.
// next is the snapshot produced by this action, so a record appended by it is
// the last element of its collection even under concurrent dispatches.
func (s *Store) Apply(ctx context.Context, action Action) (models.AppState, bool) {
	_, span := s.tracer.Start(ctx, "state.dispatch", trace.WithAttributes(
		attribute.String("action.type", string(action.Type)),
	))
	defer span.End()

	s.dispatchMu.Lock()
	prev := s.State()
	next := s.reducer.Reduce(prev, action)
	changed := next.Revision != prev.Revision
	if changed {
		next.LastUpdated = s.now().UnixMilli()
		s.mu.Lock()
		s.current = next
		s.mu.Unlock()
		s.enqueue(next)
	}
	hooks := s.hooks
	s.dispatchMu.Unlock()

	result := "noop"
	if changed {
		result = "applied"
		s.watchers.broadcast(next)
		for _, hook := range hooks {
			hook(ctx, action, prev, next)
		}
	}
	span.SetAttributes(attribute.Int64("state.revision", next.Revision))
	observability.ActionsDispatchedTotal().WithLabelValues(string(action.Type), result).Inc()

	s.logger.Debug().
		Str("action", string(action.Type)).
		Int64("revision", next.Revision).
		Bool("changed", changed).
		Msg("action dispatched")

	return next, changed
}

// Replace swaps in a snapshot received from another node. The whole document
// wins; nothing is merged. A push identical to the current revision and
// timestamp is ignored.
func (s *Store) Replace(snapshot models.AppState) bool {
	snapshot = Normalize(snapshot)

	s.dispatchMu.Lock()
	current := s.State()
	if snapshot.Revision == current.Revision && snapshot.LastUpdated == current.LastUpdated {
		s.dispatchMu.Unlock()
		return false
	}
	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
	s.dispatchMu.Unlock()

	s.watchers.broadcast(snapshot)
	s.logger.Info().
		Int64("revision", snapshot.Revision).
		Int64("previous_revision", current.Revision).
		Msg("snapshot replaced by remote push")
	return true
}

// Watch streams every new snapshot. Slow readers only ever see the newest one.
func (s *Store) Watch() (<-chan models.AppState, func()) {
	ch := make(chan models.AppState, 1)
	s.watchers.subscribe(ch)
	observability.SyncSubscribersActive().Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.watchers.unsubscribe(ch)
			observability.SyncSubscribersActive().Dec()
		})
	}
	return ch, cancel
}

// Run persists pending snapshots until ctx is cancelled, then flushes the
// last pending one.
func (s *Store) Run(ctx context.Context) {
	if s.persister == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			s.Flush(flushCtx)
			cancel()
			return
		case snapshot := <-s.pending:
			s.persister.Save(ctx, snapshot)
		}
	}
}

// Flush synchronously saves the pending snapshot, if any.
func (s *Store) Flush(ctx context.Context) {
	if s.persister == nil {
		return
	}
	select {
	case snapshot := <-s.pending:
		s.persister.Save(ctx, snapshot)
	default:
	}
}

// enqueue replaces any snapshot still waiting to be persisted.
func (s *Store) enqueue(snapshot models.AppState) {
	if s.persister == nil {
		return
	}
	for {
		select {
		case s.pending <- snapshot:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

type watchBroker struct {
	mu          sync.RWMutex
	subscribers map[chan models.AppState]struct{}
}

func (b *watchBroker) subscribe(ch chan models.AppState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *watchBroker) unsubscribe(ch chan models.AppState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *watchBroker) broadcast(snapshot models.AppState) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
