package systems

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// LoadHandle tracks one asynchronous load. Subscribers are told about the
// result exactly once, with nil when the load failed.
type LoadHandle struct {
	id        uuid.UUID
	path      string
	future    *core.Future[*metadata.Texture]
	completed *core.Event[*metadata.Texture]
}

func newLoadHandle(path string, future *core.Future[*metadata.Texture], replay bool) *LoadHandle {
	return &LoadHandle{
		id:        uuid.New(),
		path:      path,
		future:    future,
		completed: core.NewEvent[*metadata.Texture](replay),
	}
}

// bind connects the handle to its future. Called once every subscriber
// passed at creation is registered.
func (h *LoadHandle) bind() {
	h.future.Then(h.complete)
}

func (h *LoadHandle) complete(texture *metadata.Texture) {
	if !h.completed.Fire(texture) && h.completed.Closed() {
		core.LogDebug("load of '%s' finished after its handle was released", h.path)
	}
}

func (h *LoadHandle) ID() string {
	return h.id.String()
}

func (h *LoadHandle) Path() string {
	return h.path
}

// Subscribe registers fn for the completion notification. A subscriber added
// after completion only runs when late subscriber replay is enabled.
func (h *LoadHandle) Subscribe(fn func(*metadata.Texture)) core.SubscriptionToken {
	return h.completed.Register(fn)
}

func (h *LoadHandle) Unsubscribe(token core.SubscriptionToken) bool {
	return h.completed.Unregister(token)
}

// Release drops every subscriber, including ones a running notification
// has not reached yet. The load itself keeps running.
func (h *LoadHandle) Release() {
	h.completed.Close()
}

// IsCompleted reports whether subscribers have been notified.
func (h *LoadHandle) IsCompleted() bool {
	return h.completed.Fired()
}

func (h *LoadHandle) Future() *core.Future[*metadata.Texture] {
	return h.future
}

// Done is closed once the result is available. Subscribers may still be
// running at that point.
func (h *LoadHandle) Done() <-chan struct{} {
	return h.future.Done()
}

// Wait blocks until the load finishes and returns its result.
func (h *LoadHandle) Wait() *metadata.Texture {
	return h.future.Get()
}
