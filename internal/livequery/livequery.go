// ABOUTME: Subscription registry that re-runs read expressions when their collections change
// ABOUTME: Coalesce-to-latest delivery; a stale result is replaced, never queued

package livequery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Scope records the collections one execution of a query touched. A query
// must call Touch for every collection it reads so the registry knows when
// to re-run it.
type Scope struct {
	touched map[string]struct{}
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{touched: make(map[string]struct{})}
}

// Touch records that the query read the named collection.
func (s *Scope) Touch(collection string) {
	s.touched[collection] = struct{}{}
}

// Query is a read expression. It is executed once on subscription and again
// after every write to a collection its previous execution touched.
type Query[T any] func(ctx context.Context, scope *Scope) (T, error)

// Result carries one delivery of a query execution.
type Result[T any] struct {
	Value T
	Err   error
}

// subscriber is the registry's view of a subscription, independent of its
// result type.
type subscriber interface {
	collectionChanged(collection string)
	stop()
}

// Registry fans collection-change notifications out to live subscriptions.
// It implements store.ChangeListener and is registered with the store once
// at startup.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]subscriber
	logger *slog.Logger
}

// NewRegistry creates a registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		subs:   make(map[string]subscriber),
		logger: logger.With("component", "livequery"),
	}
}

// CollectionChanged notifies every subscription whose last execution touched
// the named collection. Non-blocking: triggers coalesce, so a burst of
// writes produces at most one pending re-execution per subscription.
func (r *Registry) CollectionChanged(collection string) {
	r.mu.RLock()
	targets := make([]subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		targets = append(targets, sub)
	}
	r.mu.RUnlock()

	for _, sub := range targets {
		sub.collectionChanged(collection)
	}
}

// Close stops every remaining subscription.
func (r *Registry) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]subscriber)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	r.logger.Debug("registry closed")
}

func (r *Registry) add(id string, sub subscriber) {
	r.mu.Lock()
	r.subs[id] = sub
	r.mu.Unlock()
	r.logger.Debug("subscriber added", "sub_id", id)
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	_, ok := r.subs[id]
	delete(r.subs, id)
	r.mu.Unlock()
	if ok {
		r.logger.Debug("subscriber removed", "sub_id", id)
	}
}

// Subscription is one live read. Results arrive on Updates; the first
// delivery is the initial execution, each later delivery follows a write to
// a touched collection. Delivery keeps only the latest result: an unread
// stale value is replaced, never queued.
type Subscription[T any] struct {
	id       string
	registry *Registry
	query    Query[T]

	results chan Result[T]
	trigger chan struct{}
	done    chan struct{}
	once    sync.Once

	mu   sync.RWMutex
	deps map[string]struct{}
}

// Subscribe registers a query and starts its execution loop. The
// subscription is torn down when ctx is cancelled or Close is called; after
// teardown the results channel is closed and no background work remains.
func Subscribe[T any](ctx context.Context, reg *Registry, query Query[T]) *Subscription[T] {
	sub := &Subscription[T]{
		id:       uuid.New().String(),
		registry: reg,
		query:    query,
		results:  make(chan Result[T], 1),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	reg.add(sub.id, sub)

	// Initial execution
	sub.trigger <- struct{}{}
	go sub.run(ctx)

	return sub
}

// Updates returns the result channel. It is closed when the subscription
// stops.
func (s *Subscription[T]) Updates() <-chan Result[T] {
	return s.results
}

// Close stops the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.registry.remove(s.id)
		close(s.done)
	})
}

func (s *Subscription[T]) stop() { s.Close() }

// collectionChanged re-triggers the query if its last execution touched the
// collection. The buffer-1 trigger channel coalesces bursts.
func (s *Subscription[T]) collectionChanged(collection string) {
	s.mu.RLock()
	_, touched := s.deps[collection]
	s.mu.RUnlock()
	if !touched {
		return
	}

	select {
	case s.trigger <- struct{}{}:
	default:
		// A re-execution is already pending; the newest trigger wins.
	}
}

func (s *Subscription[T]) run(ctx context.Context) {
	defer close(s.results)
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-s.done:
			return
		case <-s.trigger:
			s.execute(ctx)
		}
	}
}

func (s *Subscription[T]) execute(ctx context.Context) {
	scope := NewScope()
	value, err := s.query(ctx, scope)

	s.mu.Lock()
	s.deps = scope.touched
	s.mu.Unlock()

	s.deliver(Result[T]{Value: value, Err: err})
}

// deliver places the result in the buffer, evicting an unread stale value.
func (s *Subscription[T]) deliver(r Result[T]) {
	for {
		select {
		case s.results <- r:
			return
		default:
			select {
			case <-s.results:
				s.registry.logger.Debug("replaced stale result", "sub_id", s.id)
			default:
			}
		}
	}
}
