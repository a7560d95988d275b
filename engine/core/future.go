package core

import "sync"

// futureState is shared by a Promise and its Future.
type futureState[T any] struct {
	mu            sync.Mutex
	done          chan struct{}
	value         T
	set           bool
	continuations []func(T)
}

// Promise is the producer half of a one-shot value handoff.
type Promise[T any] struct {
	state *futureState[T]
}

// Future is the consumer half of a one-shot value handoff.
type Future[T any] struct {
	state *futureState[T]
}

// NewPromise creates a connected promise/future pair.
func NewPromise[T any]() (*Promise[T], *Future[T]) {
	s := &futureState[T]{
		done: make(chan struct{}),
	}
	return &Promise[T]{state: s}, &Future[T]{state: s}
}

// Set stores the value, wakes every blocked reader and runs the registered
// continuations on the calling goroutine. Only the first call has an effect.
// A panicking continuation is logged and does not stop the others.
func (p *Promise[T]) Set(value T) error {
	s := p.state
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return ErrPromiseAlreadySet
	}
	s.value = value
	s.set = true
	continuations := s.continuations
	s.continuations = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range continuations {
		invoke(fn, value)
	}
	return nil
}

// Get blocks until the value is available.
func (f *Future[T]) Get() T {
	<-f.state.done
	return f.state.value
}

// TryGet returns the value if it has been set, without blocking.
func (f *Future[T]) TryGet() (T, bool) {
	select {
	case <-f.state.done:
		return f.state.value, true
	default:
		var zero T
		return zero, false
	}
}

// IsReady reports whether the value has been set.
func (f *Future[T]) IsReady() bool {
	_, ok := f.TryGet()
	return ok
}

// Done is closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.state.done
}

// Then registers fn to run exactly once with the value. If the value is
// already there fn runs immediately on the caller's goroutine, otherwise on
// the goroutine that calls Promise.Set.
func (f *Future[T]) Then(fn func(T)) {
	s := f.state
	s.mu.Lock()
	if !s.set {
		s.continuations = append(s.continuations, fn)
		s.mu.Unlock()
		return
	}
	value := s.value
	s.mu.Unlock()
	invoke(fn, value)
}
