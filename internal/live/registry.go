// Package live implements observable queries: a subscription re-runs its
// loader and pushes the fresh result to its callback after every change
// notification.
package live

import (
	"context"
	"log/slog"
	"sync"
)

// Loader evaluates a query.
type Loader[T any] func(ctx context.Context) (T, error)

// Registry tracks active subscriptions and wakes them on Notify.
//
// Each subscription runs in its own goroutine and owns a dirty flag held
// in a channel of capacity one. Notify never blocks: a subscription that is
// still busy with an earlier evaluation simply runs once more afterwards
// and observes the latest state.
type Registry[T any] struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default.
func NewRegistry[T any](logger *slog.Logger) *Registry[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry[T]{
		logger: logger,
		subs:   make(map[*Subscription[T]]struct{}),
	}
}

// Subscription is a live query handle.
type Subscription[T any] struct {
	reg    *Registry[T]
	load   Loader[T]
	fn     func(T)
	dirty  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe registers a live query. fn receives the initial result and
// then a fresh result after each Notify. Calls to fn are sequential.
// Subscribing to a closed registry returns an already closed subscription.
func (r *Registry[T]) Subscribe(load Loader[T], fn func(T)) *Subscription[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription[T]{
		reg:    r,
		load:   load,
		fn:     fn,
		dirty:  make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		close(s.done)
		return s
	}
	r.subs[s] = struct{}{}
	r.mu.Unlock()

	s.dirty <- struct{}{}
	go s.run()
	return s
}

// Notify marks every subscription dirty.
func (r *Registry[T]) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for s := range r.subs {
		s.markDirty()
	}
}

// Len returns the number of active subscriptions.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Close disposes every subscription. Later Subscribe calls return closed
// subscriptions.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	r.closed = true
	subs := make([]*Subscription[T], 0, len(r.subs))
	for s := range r.subs {
		subs = append(subs, s)
	}
	r.subs = make(map[*Subscription[T]]struct{})
	r.mu.Unlock()

	for _, s := range subs {
		s.cancel()
	}
}

func (r *Registry[T]) remove(s *Subscription[T]) {
	r.mu.Lock()
	delete(r.subs, s)
	r.mu.Unlock()
}

func (s *Subscription[T]) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
		// Already pending.
	}
}

func (s *Subscription[T]) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.dirty:
		}

		v, err := s.load(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		if err != nil {
			s.reg.logger.Warn("live: query failed", slog.String("error", err.Error()))
			continue
		}
		s.fn(v)
	}
}

// Close detaches the subscription and cancels an in-flight evaluation.
// A callback that already started may still complete; none starts after
// that. Close may be called from inside the callback and more than once.
func (s *Subscription[T]) Close() {
	s.cancel()
	s.reg.remove(s)
}

// Done is closed once the subscription goroutine has exited.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
