package core

import "sync"

// SubscriptionToken identifies a callback registered on an Event.
type SubscriptionToken uint64

type registeredEvent[T any] struct {
	token    SubscriptionToken
	callback func(T)
}

// Event is a multicast list of callbacks fired at most once. Callbacks are
// invoked in registration order.
type Event[T any] struct {
	mu        sync.Mutex
	nextToken SubscriptionToken
	events    []*registeredEvent[T]
	fired     bool
	closed    bool
	value     T
	// replay makes subscribers registered after the firing receive the
	// stored value immediately.
	replay bool
}

// NewEvent creates an event. With replay set, late subscribers are invoked
// with the value the event fired with.
func NewEvent[T any](replay bool) *Event[T] {
	return &Event[T]{replay: replay}
}

// Register adds a callback and returns the token used to unregister it.
// Callbacks registered on a closed event never run.
func (e *Event[T]) Register(callback func(T)) SubscriptionToken {
	e.mu.Lock()
	e.nextToken++
	token := e.nextToken
	if e.closed {
		e.mu.Unlock()
		return token
	}
	if e.fired {
		replay := e.replay
		value := e.value
		e.mu.Unlock()
		if replay {
			invoke(callback, value)
		}
		return token
	}
	e.events = append(e.events, &registeredEvent[T]{token: token, callback: callback})
	e.mu.Unlock()
	return token
}

// Unregister removes the callback registered with token. Returns false when
// no such registration exists.
func (e *Event[T]) Unregister(token SubscriptionToken) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, ev := range e.events {
		if ev.token == token {
			e.events = append(e.events[:i], e.events[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all registered callbacks.
func (e *Event[T]) Clear() {
	e.mu.Lock()
	e.events = nil
	e.mu.Unlock()
}

// Close removes all registered callbacks and stops the event from invoking
// any callback again, including ones a running Fire has not reached yet.
func (e *Event[T]) Close() {
	e.mu.Lock()
	e.closed = true
	e.events = nil
	e.mu.Unlock()
}

// Closed reports whether Close has been called.
func (e *Event[T]) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Len returns the number of registered callbacks.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

// Fired reports whether Fire has already run.
func (e *Event[T]) Fired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fired
}

// Fire invokes every registered callback with value. Only the first call
// does anything; it returns false on the following ones and on a closed
// event. A panicking callback is logged and the remaining ones still run.
func (e *Event[T]) Fire(value T) bool {
	e.mu.Lock()
	if e.fired || e.closed {
		e.mu.Unlock()
		return false
	}
	e.fired = true
	e.value = value
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ev := range events {
		if e.Closed() {
			break
		}
		invoke(ev.callback, value)
	}
	return true
}

// invoke runs fn and turns a panic into an error log.
func invoke[T any](fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			LogError("callback panicked: %v", r)
		}
	}()
	fn(value)
}
